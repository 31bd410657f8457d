// Package pull builds registration task lists from accession listings and
// exports the radiology reports of the exams they name.
package pull

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Task pairs a moving exam with the fixed exam of the same CAD patient, both
// identified by accession number.
type Task struct {
	CADPatient string
	Fixed      string
	Moving     string
}

func (t Task) String() string {
	return fmt.Sprintf("CAD %s: %s -> %s", t.CADPatient, t.Moving, t.Fixed)
}

type listing struct {
	patient   string
	accession string
}

// ParseTaskList reads whitespace separated `CADPatID StudyDate Accession`
// lines. Per patient the greatest accession becomes the fixed exam and every
// other accession a moving one. Patients with a single accession produce no
// task.
func ParseTaskList(r io.Reader) ([]Task, error) {
	var rows []listing

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("task list line %d: want CADPatID StudyDate Accession, got %q", line, sc.Text())
		}
		rows = append(rows, listing{patient: fields[0], accession: fields[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read task list: %w", err)
	}

	rows = lo.Uniq(rows)
	slices.SortFunc(rows, func(a, b listing) int {
		if c := cmp.Compare(b.patient, a.patient); c != 0 {
			return c
		}
		return cmp.Compare(b.accession, a.accession)
	})

	tasks := []Task{}
	for _, group := range lo.PartitionBy(rows, func(l listing) string { return l.patient }) {
		fixed := group[0].accession
		for _, l := range group[1:] {
			tasks = append(tasks, Task{CADPatient: l.patient, Fixed: fixed, Moving: l.accession})
		}
	}
	return tasks, nil
}
