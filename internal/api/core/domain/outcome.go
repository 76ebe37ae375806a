package domain

// OutcomeKind is the single terminal decision taken for a request.
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeRejectedValidation
	OutcomeRejectedInventory
	OutcomeRejectedDependency
	OutcomeRejectedItemLimit
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejectedValidation:
		return "rejected_validation"
	case OutcomeRejectedInventory:
		return "rejected_inventory"
	case OutcomeRejectedDependency:
		return "rejected_dependency"
	case OutcomeRejectedItemLimit:
		return "rejected_item_limit"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of the order pipeline. Result is set only for
// OutcomeAccepted, Err for every other kind.
type Outcome struct {
	Kind   OutcomeKind
	Result *OrderResult
	Err    error
}

func Accepted(r *OrderResult) Outcome {
	return Outcome{Kind: OutcomeAccepted, Result: r}
}

// Rejected builds the outcome matching the type of err. Errors that are not
// business rejections become OutcomeFailed.
func Rejected(err error) Outcome {
	kind := OutcomeFailed
	switch err.(type) {
	case *ValidationError:
		kind = OutcomeRejectedValidation
	case *InventoryError:
		kind = OutcomeRejectedInventory
	case *DependencyTimeoutError:
		kind = OutcomeRejectedDependency
	case *ItemLimitError:
		kind = OutcomeRejectedItemLimit
	}
	return Outcome{Kind: kind, Err: err}
}

// PaymentOutcome is the result of the payment pipeline.
type PaymentOutcome struct {
	Status PaymentStatus
	Err    error
}
