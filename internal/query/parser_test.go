package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		conds int
	}{
		{"bare entity", "Patient", "Patient", 0},
		{"bare entity with spaces", "  Series ", "Series", 0},
		{"string literal", "CAD.cad_pt_no_txt=='0042'", `CAD.cad_pt_no_txt=="0042"`, 1},
		{"double quoted", `Patient.gender_int=="None"`, `Patient.gender_int=="None"`, 1},
		{"conjunction", "Exam.exam_tp_int=='MRI',Exam.sty_indicator_high_risk_yn==True",
			`Exam.exam_tp_int=="MRI",Exam.sty_indicator_high_risk_yn==True`, 2},
		{"spaces around tokens", "Exam.exam_tp_int == 'MRI' , Exam.pt_id != 3", `Exam.exam_tp_int=="MRI",Exam.pt_id!=3`, 2},
		{"none", "Exam.exam_dt_datetime==None", "Exam.exam_dt_datetime==None", 1},
		{"negative float", "Finding.score<=-1.5", "Finding.score<=-1.5", 1},
		{"exponent", "Finding.score>2e3", "Finding.score>2000", 1},
		{"escaped quote", `Exam.original_report_txt=='it\'s'`, `Exam.original_report_txt=="it's"`, 1},
		{"all operators", "Finding.a<1,Finding.b>2,Finding.c<=3,Finding.d>=4,Finding.e!=5,Finding.f==6",
			"Finding.a<1,Finding.b>2,Finding.c<=3,Finding.d>=4,Finding.e!=5,Finding.f==6", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.src, err)
			}
			if got := q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := len(q.Comparisons); got != tt.conds {
				t.Errorf("got %d comparisons, want %d", got, tt.conds)
			}
		})
	}
}

func TestParseLiteralTypes(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"CAD.cad_pt_no_txt=='0042'", "0042"},
		{"CAD.cad_pt_no_txt==42", int64(42)},
		{"CAD.cad_pt_no_txt==4.5", 4.5},
		{"CAD.flag==True", true},
		{"CAD.flag==False", false},
		{"CAD.flag==None", nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			q, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			conds := q.Conditions()
			if got := conds[0].Value; got != tt.want {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
			if conds[0].Op != model.OpEQ {
				t.Errorf("op = %q, want ==", conds[0].Op)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"no operator", "CAD.cad_pt_no_txt"},
		{"no literal", "CAD.cad_pt_no_txt=="},
		{"single equals", "CAD.cad_pt_no_txt='0042'"},
		{"unterminated string", "CAD.cad_pt_no_txt=='0042"},
		{"trailing comma", "CAD.cad_pt_no_txt=='0042',"},
		{"missing field", "CAD.=='0042'"},
		{"bare identifier literal", "CAD.cad_pt_no_txt==foo"},
		{"call syntax", "__import__('os')"},
		{"attribute chain", "CAD.patient.pt_id==1"},
		{"two bare words", "Patient Exam"},
		{"mixed entities", "Exam.exam_tp_int=='MRI',Patient.pt_id==1"},
		{"stray character", "Exam.pt_id==1;"},
		{"malformed number", "Exam.pt_id==1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if !errors.Is(err, ErrQuerySyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrQuerySyntax", tt.src, err)
			}
		})
	}
}

func TestParseErrorPositions(t *testing.T) {
	tests := []struct {
		src    string
		offset string
	}{
		{"Exam.pt_id==1;", "offset 13"},
		{"Exam.pt_id=='MRI' Exam", "offset 18"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Parse(tt.src)
			if !errors.Is(err, ErrQuerySyntax) {
				t.Fatalf("Parse() error = %v, want ErrQuerySyntax", err)
			}
			if !strings.Contains(err.Error(), tt.offset) {
				t.Errorf("error %q does not mention %s", err, tt.offset)
			}
		})
	}
}

func TestParseComparisonPositions(t *testing.T) {
	q, err := Parse("Exam.exam_tp_int=='MRI', Exam.pt_id==3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if q.Comparisons[0].Pos != 0 || q.Comparisons[1].Pos != 25 {
		t.Errorf("positions = %d, %d, want 0, 25", q.Comparisons[0].Pos, q.Comparisons[1].Pos)
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		tok  string
		want string
	}{
		{`'0042'`, "0042"},
		{`"MRI"`, "MRI"},
		{`''`, ""},
		{`'it\'s'`, "it's"},
		{`"say \"hi\""`, `say "hi"`},
		{`'a\tb'`, "a\tb"},
		{`'c:\\tmp'`, `c:\tmp`},
	}
	for _, tt := range tests {
		if got := unquote(tt.tok); got != tt.want {
			t.Errorf("unquote(%s) = %q, want %q", tt.tok, got, tt.want)
		}
	}
}
