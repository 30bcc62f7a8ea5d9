package model

// DeriveStatus computes a request's overall status from its step rows alone.
// The rules, in precedence order:
//
//	any step with approval == false  -> REJECTED
//	all steps with approval == true  -> APPROVED
//	otherwise                        -> PENDING
//
// The function is pure and idempotent: applying it twice to the same step set
// yields the same result, and no cached status may override it. An empty step
// set yields PENDING; orders are never created without steps, so an empty set
// only occurs for data read mid-provisioning.
func DeriveStatus(steps []WorkflowStepDetail) RequestStatus {
	if len(steps) == 0 {
		return RequestStatusPending
	}

	allApproved := true
	for i := range steps {
		approval := steps[i].Approval
		if approval == nil {
			allApproved = false
			continue
		}
		if !*approval {
			return RequestStatusRejected
		}
	}

	if allApproved {
		return RequestStatusApproved
	}
	return RequestStatusPending
}
