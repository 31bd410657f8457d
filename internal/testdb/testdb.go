// Package testdb builds small on-disk sqlite copies of the BioMatrix schema
// for tests.
package testdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/Alijeyrad/biomatrix/pkg/database"
)

// Fixture counts, used by tests that check whole-table reads.
const (
	Patients    = 3
	Exams       = 5
	Procedures  = 2
	Pathologies = 5
)

var ddl = []string{
	`CREATE TABLE tbl_pt_demographics (
		pt_id INTEGER PRIMARY KEY,
		anony_last_nm_txt TEXT,
		anony_first_nm_txt TEXT
	)`,
	`CREATE TABLE tbl_pt_mri_cad_record (
		pt_mri_cad_record_id INTEGER PRIMARY KEY,
		pt_id INTEGER REFERENCES tbl_pt_demographics(pt_id),
		cad_pt_no_txt TEXT,
		latest_mutation_status_int TEXT
	)`,
	`CREATE TABLE tbl_pt_exam (
		pt_exam_id INTEGER PRIMARY KEY,
		pt_id INTEGER REFERENCES tbl_pt_demographics(pt_id),
		exam_dt_datetime DATETIME,
		exam_tp_int TEXT,
		sty_indicator_high_risk_yn BOOLEAN,
		exam_img_dicom_txt TEXT,
		a_number_txt TEXT,
		mri_cad_status_txt TEXT,
		original_report_txt TEXT
	)`,
	`CREATE TABLE tbl_pt_exam_finding (
		pt_exam_finding_id INTEGER PRIMARY KEY,
		pt_exam_id INTEGER REFERENCES tbl_pt_exam(pt_exam_id),
		all_birads_scr_int INTEGER
	)`,
	`CREATE TABLE tbl_pt_procedure (
		pt_procedure_id INTEGER PRIMARY KEY,
		pt_id INTEGER REFERENCES tbl_pt_demographics(pt_id),
		proc_dt_datetime DATETIME,
		proc_source_int TEXT
	)`,
	`CREATE TABLE tbl_pt_pathology (
		pt_path_id INTEGER PRIMARY KEY,
		pt_procedure_id INTEGER REFERENCES tbl_pt_procedure(pt_procedure_id),
		cytology_int TEXT,
		histop_core_biopsy_benign_yn BOOLEAN,
		histop_core_biopsy_high_risk_yn BOOLEAN,
		histop_tp_isc_yn BOOLEAN,
		histop_tp_ic_yn BOOLEAN
	)`,
	`CREATE TABLE tbl_pt_mri_series (
		pt_mri_series_id INTEGER PRIMARY KEY,
		a_no_txt TEXT,
		exam_img_dicom_txt TEXT
	)`,
	`CREATE TABLE tbl_pt_mri_cad_can_tp (
		pt_mri_cad_can_tp_id INTEGER PRIMARY KEY,
		pt_path_id INTEGER REFERENCES tbl_pt_pathology(pt_path_id),
		can_tp_int TEXT
	)`,
	`CREATE TABLE tbl_pt_exam_lesion (
		pt_exam_lesion_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE tbl_pt_exam_finding_lesion_link (
		pt_exam_finding_id INTEGER REFERENCES tbl_pt_exam_finding(pt_exam_finding_id),
		pt_exam_lesion_id INTEGER REFERENCES tbl_pt_exam_lesion(pt_exam_lesion_id)
	)`,
	`CREATE TABLE tbl_pt_exam_lesion_link (
		pt_exam_id INTEGER REFERENCES tbl_pt_exam(pt_exam_id),
		pt_exam_lesion_id INTEGER REFERENCES tbl_pt_exam_lesion(pt_exam_lesion_id)
	)`,
	`CREATE TABLE tbl_pt_pathology_lesion_link (
		pt_path_id INTEGER REFERENCES tbl_pt_pathology(pt_path_id),
		pt_exam_lesion_id INTEGER REFERENCES tbl_pt_exam_lesion(pt_exam_lesion_id)
	)`,
}

// Patient 1 has four MRI/US exams (one undated) and two procedures; exam 13
// and procedure 20 share a date. Patient 2 has one exam and CAD number 0042.
// Patient 3 has nothing.
var seed = []string{
	`INSERT INTO tbl_pt_demographics VALUES
		(1, 'Smith', 'Alice'),
		(2, 'Jones', 'Beth'),
		(3, 'Adams', 'Carol')`,
	`INSERT INTO tbl_pt_mri_cad_record VALUES
		(1, 1, '0007', 'BRCA1'),
		(2, 2, '0042', NULL),
		(3, 3, '42', NULL)`,
	`INSERT INTO tbl_pt_exam VALUES
		(10, 1, '2015-03-01 09:30:00', 'MRI', 1, '1001', 'A10', 'Benign by assumption', 'No suspicious enhancement.'),
		(11, 1, NULL, 'MRI', 1, '1002', 'A11', NULL, 'Report pending.'),
		(12, 1, '2013-01-15 10:00:00', 'MRI', 1, '1003', 'A12', NULL, 'Baseline screening.'),
		(13, 1, '2014-06-01 08:00:00', 'US', 0, NULL, 'A13', NULL, 'Targeted ultrasound.'),
		(14, 2, '2016-02-02 11:15:00', 'MRI', 0, '1004', 'A14', 'Benign by assumption', 'Mass in the left breast.')`,
	`INSERT INTO tbl_pt_exam_finding VALUES
		(30, 10, 4),
		(31, 10, NULL),
		(32, 12, 2),
		(33, 14, 5),
		(34, 11, 0)`,
	`INSERT INTO tbl_pt_procedure VALUES
		(20, 1, '2014-06-01 08:00:00', 'Core biopsy'),
		(21, 1, NULL, 'Lumpectomy')`,
	`INSERT INTO tbl_pt_pathology VALUES
		(40, 20, 'C2', 1, 1, 0, 0),
		(41, 20, 'C5', 0, 0, 0, 1),
		(42, 21, NULL, NULL, NULL, NULL, NULL),
		(43, 21, 'C4', 0, 0, 1, 1),
		(44, 21, 'C3', NULL, 1, NULL, NULL)`,
	`INSERT INTO tbl_pt_mri_series VALUES
		(50, 'A10', '1001'),
		(51, 'A10', '1001'),
		(52, 'A12', '1003')`,
	`INSERT INTO tbl_pt_mri_cad_can_tp VALUES
		(60, 41, 'IDC')`,
	`INSERT INTO tbl_pt_exam_lesion VALUES (70), (71)`,
	`INSERT INTO tbl_pt_exam_finding_lesion_link VALUES (30, 70), (33, 71)`,
	`INSERT INTO tbl_pt_exam_lesion_link VALUES (10, 70), (14, 71)`,
	`INSERT INTO tbl_pt_pathology_lesion_link VALUES (41, 70)`,
}

// Path creates a seeded database file under t.TempDir and returns its path.
func Path(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "biomatrix.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	for _, stmt := range append(ddl, seed...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	return path
}

// Params returns connection params for a fresh seeded database.
func Params(t testing.TB) database.Params {
	t.Helper()
	return database.Params{Driver: "sqlite", Database: Path(t)}
}

// Connector returns a connector bound to a fresh seeded database. It is
// closed when the test ends.
func Connector(t testing.TB) *database.Connector {
	t.Helper()

	c := database.NewConnector()
	if err := c.Connect(t.Context(), Params(t)); err != nil {
		t.Fatalf("connect fixture db: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Session opens a session on a fresh seeded database.
func Session(t testing.TB) *database.Session {
	t.Helper()

	s, err := Connector(t).Session()
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}
