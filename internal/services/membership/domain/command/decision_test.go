package command

import "testing"

func TestAcceptHasNoRejections(t *testing.T) {
	decision := Accept()
	if !decision.Accepted() {
		t.Fatal("expected accepted decision")
	}
	if _, rejected := decision.Reason(); rejected {
		t.Fatal("expected no reason")
	}
	if decision.String() != "accepted" {
		t.Fatalf("string = %q, want accepted", decision.String())
	}
}

func TestRejectCopiesRejections(t *testing.T) {
	rejections := []Rejection{{Code: "INCONSISTENT_TRANSITION", Message: "issuer changed", Field: "issuer"}}
	decision := Reject(rejections...)
	rejections[0].Code = "MUTATED"

	if decision.Accepted() {
		t.Fatal("expected rejected decision")
	}
	reason, ok := decision.Reason()
	if !ok {
		t.Fatal("expected reason")
	}
	if reason.Code != "INCONSISTENT_TRANSITION" {
		t.Fatalf("code = %s, want INCONSISTENT_TRANSITION", reason.Code)
	}
	if got := decision.String(); got != "rejected: INCONSISTENT_TRANSITION (issuer)" {
		t.Fatalf("string = %q", got)
	}
}
