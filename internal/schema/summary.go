package schema

import (
	"fmt"
	"unicode/utf8"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Patient display needs a last name; the first name is shortened to its
// initial and may be absent.
func summarizePatient(r *model.Record) (string, error) {
	last, ok := r.String("anony_last_nm_txt")
	if !ok || last == "" {
		return "", fmt.Errorf("%w: Patient %s has no anony_last_nm_txt", model.ErrIncompleteRecord, r.Display("pt_id"))
	}
	initial := ""
	if first, ok := r.String("anony_first_nm_txt"); ok && first != "" {
		c, _ := utf8.DecodeRuneInString(first)
		initial = string(c)
	}
	return fmt.Sprintf("Patient %s: %s, %s", r.Display("pt_id"), last, initial), nil
}

func summarizeCAD(r *model.Record) (string, error) {
	return fmt.Sprintf("CAD record %s: %s for patient %s",
		r.Display("pt_mri_cad_record_id"), r.Display("latest_mutation_status_int"), r.Display("pt_id")), nil
}

func summarizeExam(r *model.Record) (string, error) {
	return fmt.Sprintf("Exam %s: %s on %s; DICOM %s, CAD %s",
		r.Display("pt_exam_id"), r.Display("exam_tp_int"), r.Display("exam_dt_datetime"),
		r.Display("exam_img_dicom_txt"), r.Display("mri_cad_status_txt")), nil
}

func summarizeFinding(r *model.Record) (string, error) {
	score, err := r.Int(biradsColumn)
	if err != nil {
		return "", err
	}
	label, err := SeverityLabel(score)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s: %s finding (BIRADS %s)", r.Display("pt_exam_finding_id"), label, r.Display(biradsColumn)), nil
}

func summarizeProcedure(r *model.Record) (string, error) {
	source := []rune(r.Display("proc_source_int"))
	if len(source) > 9 {
		source = source[:9]
	}
	return fmt.Sprintf("Procedure %s: %s on %s", r.Display("pt_procedure_id"), string(source), r.Display("proc_dt_datetime")), nil
}

func summarizePathology(r *model.Record) (string, error) {
	diagnosis, err := Diagnose(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Pathology %s: cytology %s, histopath %s", r.Display("pt_path_id"), r.Display("cytology_int"), diagnosis), nil
}

func summarizeSeries(r *model.Record) (string, error) {
	return fmt.Sprintf("Series %s: DICOM %s, accession %s",
		r.Display("pt_mri_series_id"), r.Display("exam_img_dicom_txt"), r.Display("a_no_txt")), nil
}

func summarizeCancer(r *model.Record) (string, error) {
	return fmt.Sprintf("Cancer %s: %s for pathology %s",
		r.Display("pt_mri_cad_can_tp_id"), r.Display("can_tp_int"), r.Display("pt_path_id")), nil
}

func summarizeLesion(r *model.Record) (string, error) {
	return "Lesion location " + r.Display("pt_exam_lesion_id"), nil
}
