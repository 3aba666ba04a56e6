/*
types.go - Core domain types for the maintenance work tracker

PURPOSE:
  Defines the WorkItem record, the closed department/status token sets,
  and the YearPartition collection that is the unit of storage.

DATA MODEL:
  WorkItem:      One maintenance task. Identified by an opaque id that is
                 unique across the whole multi-year store and never reused.
  YearPartition: date string (YYYY-MM-DD) -> ordered list of WorkItems.
                 One partition per calendar year; the date field of an item
                 decides which partition it lives in.

TOKENS:
  Department and status are stored as raw English tokens. The field UIs
  translate them for display; the engine never does.

VALIDATION:
  Boundary validation uses go-playground/validator struct tags. Number,
  reference, description and department are required; remarks may be empty.

SEE ALSO:
  - partition.go: date/year mapping and cross-year merges
  - dedupe.go: field-wise duplicate definition
  - store.go: persistence contract for YearPartition
*/
package worklog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// TOKENS
// =============================================================================

// Department is the closed set of maintenance categories.
type Department string

const (
	DeptMechanical      Department = "Mechanical"
	DeptElectrical      Department = "Electrical"
	DeptInstrumentation Department = "Instrumentation"
	DeptService         Department = "Service"
	DeptOperations      Department = "Operations"
)

// Status is the closed set of lifecycle tokens.
type Status string

const (
	StatusCompleted  Status = "Completed"
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusOnHold     Status = "On Hold"
	// StatusCancelled is used by field crews to mark a work as started;
	// the token predates the current status list and is kept for data
	// compatibility. Display layers label it "Start".
	StatusCancelled Status = "Cancelled"
)

// =============================================================================
// WORK ITEM
// =============================================================================

// WorkItem is one maintenance task record.
// The id is generated client-side at creation time and is the sole key
// for update and delete. Every other field is free text except the
// department/status tokens and the date.
type WorkItem struct {
	ID          string `json:"id"`
	Number      string `json:"number" validate:"required"`
	Reference   string `json:"reference" validate:"required"`
	Description string `json:"description" validate:"required"`
	Department  string `json:"department" validate:"required,oneof=Mechanical Electrical Instrumentation Service Operations"`
	Status      string `json:"status" validate:"omitempty,oneof=Completed Pending 'In Progress' 'On Hold' Cancelled"`
	Remarks     string `json:"remarks"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SameContent reports whether two items are field-wise equal, ignoring id.
// This is the duplicate definition: two records with different ids but
// identical content are duplicates.
func (w WorkItem) SameContent(other WorkItem) bool {
	return w.Number == other.Number &&
		w.Reference == other.Reference &&
		w.Description == other.Description &&
		w.Department == other.Department &&
		w.Status == other.Status &&
		w.Remarks == other.Remarks &&
		w.Date == other.Date
}

var validate = validator.New()

// ValidateItem checks a WorkItem against the boundary rules.
// Returns a *ValidationError describing the first failing field.
func ValidateItem(w WorkItem) error {
	err := validate.Struct(w)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		e := verrs[0]
		return &ValidationError{
			Field:  strings.ToLower(e.Field()),
			Reason: fmt.Sprintf("failed %q rule", e.Tag()),
		}
	}
	return &ValidationError{Field: "item", Reason: err.Error()}
}

// =============================================================================
// YEAR PARTITION
// =============================================================================

// YearPartition maps a date string (YYYY-MM-DD) to its date bucket.
// Bucket order is insertion order; it carries no meaning beyond display.
type YearPartition map[string][]WorkItem

// Clone returns a deep copy. Stores hand out clones so callers can
// mutate freely without aliasing persisted state.
func (p YearPartition) Clone() YearPartition {
	out := make(YearPartition, len(p))
	for date, bucket := range p {
		items := make([]WorkItem, len(bucket))
		copy(items, bucket)
		out[date] = items
	}
	return out
}

// Items flattens all date buckets into a single slice.
func (p YearPartition) Items() []WorkItem {
	var out []WorkItem
	for _, bucket := range p {
		out = append(out, bucket...)
	}
	return out
}

// FindByID returns the date bucket and index holding id, or ("", -1).
func (p YearPartition) FindByID(id string) (string, int) {
	for date, bucket := range p {
		for i, item := range bucket {
			if item.ID == id {
				return date, i
			}
		}
	}
	return "", -1
}
