package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/certlab/kcnasim/internal/model"
)

const header = "id,question,optionA,optionB,optionC,optionD,optionE,correct,explanation,domain,competency"

func TestParseValidRows(t *testing.T) {
	csv := strings.Join([]string{
		header,
		`k1,What is a Pod?,A unit,A node,A service,A volume,,A,Smallest deployable unit,Kubernetes Fundamentals,Pods`,
		`k2,"Which component schedules Pods?",kubelet,kube-scheduler,etcd,kube-proxy,apiserver,B,,Kubernetes Fundamentals,Scheduling`,
	}, "\n")

	bank, dropped, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
	if len(bank) != 2 {
		t.Fatalf("expected 2 records, got %d", len(bank))
	}

	q := bank[0]
	if q.ID != "k1" {
		t.Errorf("expected id k1, got %q", q.ID)
	}
	if q.Prompt != "What is a Pod?" {
		t.Errorf("unexpected prompt %q", q.Prompt)
	}
	if q.Correct != model.OptionA {
		t.Errorf("expected correct A, got %q", q.Correct)
	}
	if len(q.Options()) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.Options()))
	}
	if len(bank[1].Options()) != 5 {
		t.Errorf("expected 5 options with E present, got %d", len(bank[1].Options()))
	}
}

func TestParseQuoting(t *testing.T) {
	csv := strings.Join([]string{
		header,
		`k1,"What does ""etcd"" store, exactly?",State,Logs,Images,Secrets only,,A,"It is the cluster's ""source of truth""",Architecture,Storage`,
	}, "\n")

	bank, _, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(bank) != 1 {
		t.Fatalf("expected 1 record, got %d", len(bank))
	}
	if want := `What does "etcd" store, exactly?`; bank[0].Prompt != want {
		t.Errorf("expected prompt %q, got %q", want, bank[0].Prompt)
	}
	if want := `It is the cluster's "source of truth"`; bank[0].Explanation != want {
		t.Errorf("expected explanation %q, got %q", want, bank[0].Explanation)
	}
}

func TestParseDropsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"too few fields", `k1,prompt,a,b`},
		{"empty prompt", `k1,,a,b,c,d,,A,expl,dom,comp`},
		{"empty option A", `k1,prompt,,b,c,d,,A,expl,dom,comp`},
		{"empty option B", `k1,prompt,a,,c,d,,A,expl,dom,comp`},
		{"empty correct", `k1,prompt,a,b,c,d,,,expl,dom,comp`},
		{"correct names absent option", `k1,prompt,a,b,,,,C,expl,dom,comp`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := header + "\n" + tt.row + "\nk9,prompt,a,b,c,d,,A,expl,dom,comp"
			bank, dropped, err := Parse(csv)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if dropped != 1 {
				t.Errorf("expected 1 dropped row, got %d", dropped)
			}
			if len(bank) != 1 || bank[0].ID != "k9" {
				t.Errorf("expected only k9 to survive, got %v", bank)
			}
		})
	}
}

func TestParsePlaceholderID(t *testing.T) {
	csv := header + "\n,prompt,a,b,c,d,,A,expl,dom,comp"
	bank, _, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if bank[0].ID != "q1" {
		t.Errorf("expected placeholder id q1, got %q", bank[0].ID)
	}
}

func TestParseSkipsBlankLines(t *testing.T) {
	csv := header + "\n\n   \nk1,prompt,a,b,c,d,,A,expl,dom,comp\n\n"
	bank, dropped, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
	if len(bank) != 1 {
		t.Fatalf("expected 1 record, got %d", len(bank))
	}
}

func TestParseEmptyBank(t *testing.T) {
	for _, text := range []string{"", header, header + "\nbad,row"} {
		if _, _, err := Parse(text); !errors.Is(err, ErrEmptyBank) {
			t.Errorf("Parse(%q): expected ErrEmptyBank, got %v", text, err)
		}
	}
}

func TestParsedRecordsAreValid(t *testing.T) {
	csv := strings.Join([]string{
		header,
		`k1,prompt,a,b,c,d,e,E,expl,dom,comp`,
		`k2,prompt,a,b,,,,B,expl,dom,comp`,
		`k3,prompt,a,b,c,,,Z,expl,dom,comp`,
	}, "\n")
	bank, _, err := Parse(csv)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, q := range bank {
		if !q.Valid() {
			t.Errorf("record %s failed validity after parsing", q.ID)
		}
		if _, ok := q.OptionText(q.Correct); !ok {
			t.Errorf("record %s: correct option %q not present", q.ID, q.Correct)
		}
		for _, c := range q.Options() {
			if !c.Letter.IsValid() {
				t.Errorf("record %s: option letter %q outside A-E", q.ID, c.Letter)
			}
		}
	}
}
