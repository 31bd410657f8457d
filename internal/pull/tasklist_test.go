package pull

import (
	"slices"
	"strings"
	"testing"
)

func TestParseTaskList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Task
	}{
		{
			name:  "empty",
			input: "",
			want:  []Task{},
		},
		{
			name:  "greatest accession is fixed",
			input: "7 20150301 A10\n7 20130115 A12\n",
			want:  []Task{{CADPatient: "7", Fixed: "A12", Moving: "A10"}},
		},
		{
			name:  "single accession gives no task",
			input: "42 20160202 A14\n",
			want:  []Task{},
		},
		{
			name:  "several moving exams",
			input: "1\t2010 A1\n1 2012 A3\n\n1 2011   A2\n",
			want: []Task{
				{CADPatient: "1", Fixed: "A3", Moving: "A2"},
				{CADPatient: "1", Fixed: "A3", Moving: "A1"},
			},
		},
		{
			name:  "patients descending and duplicates collapsed",
			input: "2 d B1\n3 d C1\n2 d B2\n3 d C2\n2 d B1\n",
			want: []Task{
				{CADPatient: "3", Fixed: "C2", Moving: "C1"},
				{CADPatient: "2", Fixed: "B2", Moving: "B1"},
			},
		},
		{
			name:  "extra columns ignored",
			input: "5 d A1 trailing\n5 d A2\n",
			want:  []Task{{CADPatient: "5", Fixed: "A2", Moving: "A1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTaskList(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseTaskList() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseTaskList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTaskListRejectsShortLines(t *testing.T) {
	_, err := ParseTaskList(strings.NewReader("7 20150301 A10\n7 A12\n"))
	if err == nil {
		t.Fatal("ParseTaskList() accepted a line with two fields")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want it to name line 2", err)
	}
}
