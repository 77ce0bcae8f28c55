package provenance

import "testing"

func TestPageCount(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{101, 50, 3},
	}
	for _, c := range cases {
		if got := pageCount(c.total, c.size); got != c.want {
			t.Fatalf("pageCount(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestClampSize(t *testing.T) {
	s := NewService(nil, 50, 500)
	if got := s.clampSize(0); got != 50 {
		t.Fatalf("default size: got %d", got)
	}
	if got := s.clampSize(1000); got != 500 {
		t.Fatalf("max size: got %d", got)
	}
	if got := s.clampSize(20); got != 20 {
		t.Fatalf("explicit size: got %d", got)
	}
}

func TestGroupByPatientPreservesPageOrder(t *testing.T) {
	codes := []string{"b", "a"}
	records := []StaleRecord{
		{ID: "1", PatientCode: "a"},
		{ID: "2", PatientCode: "b"},
		{ID: "3", PatientCode: "b"},
	}

	groups := groupByPatient(codes, records)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].PatientCode != "b" || len(groups[0].Records) != 2 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].PatientCode != "a" || len(groups[1].Records) != 1 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}
