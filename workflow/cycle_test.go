package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
)

func TestBuildRotation_AssignsWeeksInOrder(t *testing.T) {
	memberIds := []int{21, 34, 13, 8}
	sequences := BuildRotation(memberIds, dec("250"))

	if len(sequences) != len(memberIds) {
		t.Fatalf("got %d sequences, want %d", len(sequences), len(memberIds))
	}

	for i, seq := range sequences {
		if seq.WeekNumber != i+1 {
			t.Errorf("index %d: week = %d, want %d", i, seq.WeekNumber, i+1)
		}
		if seq.MemberId != memberIds[i] {
			t.Errorf("week %d: member = %d, want %d", seq.WeekNumber, seq.MemberId, memberIds[i])
		}
		if seq.Status != models.SequenceStatusPending {
			t.Errorf("week %d: status = %s, want PENDING", seq.WeekNumber, seq.Status)
		}
		// Every member receives the full weekly pool.
		if !seq.LoanAmount.Equal(dec("1000")) {
			t.Errorf("week %d: loan amount = %s, want 1000", seq.WeekNumber, seq.LoanAmount)
		}
	}
}

func TestBuildRotation_SingleMember(t *testing.T) {
	sequences := BuildRotation([]int{5}, dec("100"))

	if len(sequences) != 1 {
		t.Fatalf("got %d sequences, want 1", len(sequences))
	}
	if !sequences[0].LoanAmount.Equal(dec("100")) {
		t.Errorf("loan amount = %s, want 100", sequences[0].LoanAmount)
	}
}
