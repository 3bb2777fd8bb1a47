package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleDoc() *Document {
	return &Document{Sections: []Section{
		{Title: "Rivers", Cells: []Cell{
			{ID: "a", PromptText: "Longest river?", RevealedText: "Nile", PointValue: 100},
			{ID: "b", PromptText: "Flows through Paris?", RevealedText: "Seine", PointValue: 200},
		}},
	}}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		old        func() *Document
		mutate     func(d *Document)
		wantNil    bool
		wantCells  int
		wantFields []string
		wantTitles int
	}{
		{
			name:       "Initial Load (Old is Nil)",
			old:        func() *Document { return nil },
			mutate:     func(d *Document) {},
			wantCells:  2,
			wantFields: []string{"*"},
			wantTitles: 1,
		},
		{
			name:    "No Changes",
			old:     sampleDoc,
			mutate:  func(d *Document) {},
			wantNil: true,
		},
		{
			name: "Prompt And Answered",
			old:  sampleDoc,
			mutate: func(d *Document) {
				d.Sections[0].Cells[1].PromptText = "Flows through London?"
				d.Sections[0].Cells[1].Answered = true
			},
			wantCells:  1,
			wantFields: []string{"prompt_text", "answered"},
		},
		{
			name: "Title Only",
			old:  sampleDoc,
			mutate: func(d *Document) {
				d.Sections[0].Title = "Lakes"
			},
			wantTitles: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newDoc := sampleDoc()
			tt.mutate(newDoc)

			got := Diff(tt.old(), newDoc)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected diff, got nil")
			}
			if len(got.Cells) != tt.wantCells {
				t.Errorf("cells: want %d, got %d", tt.wantCells, len(got.Cells))
			}
			if len(got.Titles) != tt.wantTitles {
				t.Errorf("titles: want %d, got %d", tt.wantTitles, len(got.Titles))
			}
			if tt.wantFields != nil && len(got.Cells) > 0 {
				if strings.Join(got.Cells[0].Fields, ",") != strings.Join(tt.wantFields, ",") {
					t.Errorf("fields: want %v, got %v", tt.wantFields, got.Cells[0].Fields)
				}
			}
		})
	}
}

func TestDiff_JSONSerialization(t *testing.T) {
	old := sampleDoc()
	updated := sampleDoc()
	updated.Sections[0].Cells[0].RevealedText = "Amazon"

	data, err := json.Marshal(Diff(old, updated))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"fields":["revealed_text"]`) {
		t.Errorf("unexpected JSON: %s", s)
	}
	if strings.Contains(s, "titles") {
		t.Errorf("unchanged titles should be omitted: %s", s)
	}
}
