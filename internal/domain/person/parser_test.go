package person

import "testing"

func testIndex() *NameIndex {
	return NewNameIndex([]Person{
		New("p-1", "Alice", []float32{0.1}),
		New("p-2", "Alice Chen", []float32{0.2}),
		New("p-3", "Bob", nil),
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantID       string
		wantResidual string
		wantOK       bool
	}{
		{
			name:         "bare name at start",
			query:        "Alice cooking dinner",
			wantID:       "p-1",
			wantResidual: "cooking dinner",
			wantOK:       true,
		},
		{
			name:         "longest name wins",
			query:        "Alice Chen cooking dinner",
			wantID:       "p-2",
			wantResidual: "cooking dinner",
			wantOK:       true,
		},
		{
			name:         "explicit marker",
			query:        "person: Alice Chen, cooking dinner",
			wantID:       "p-2",
			wantResidual: "cooking dinner",
			wantOK:       true,
		},
		{
			name:         "at marker",
			query:        "@bob doing pushups",
			wantID:       "p-3",
			wantResidual: "doing pushups",
			wantOK:       true,
		},
		{
			name:         "case insensitive",
			query:        "ALICE CHEN at the beach",
			wantID:       "p-2",
			wantResidual: "at the beach",
			wantOK:       true,
		},
		{
			name:         "name only, empty residual",
			query:        "Alice Chen",
			wantID:       "p-2",
			wantResidual: "",
			wantOK:       true,
		},
		{
			name:   "no known name",
			query:  "sunset over the harbor",
			wantOK: false,
		},
		{
			name:   "name not at start",
			query:  "dinner with Alice",
			wantOK: false,
		},
		{
			name:   "word boundary respected",
			query:  "Alicey at the park",
			wantOK: false,
		},
		{
			name:   "marker with unknown name",
			query:  "person: Dana cooking",
			wantOK: false,
		},
		{
			name:   "empty query",
			query:  "   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := testIndex().Parse(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if match.Person.ID() != tt.wantID {
				t.Errorf("Parse(%q) person = %s, want %s", tt.query, match.Person.ID(), tt.wantID)
			}
			if match.Residual != tt.wantResidual {
				t.Errorf("Parse(%q) residual = %q, want %q", tt.query, match.Residual, tt.wantResidual)
			}
		})
	}
}

func TestParseEmptyIndex(t *testing.T) {
	idx := NewNameIndex(nil)
	if _, ok := idx.Parse("Alice cooking"); ok {
		t.Error("Parse() matched against an empty index")
	}
}

func TestTrained(t *testing.T) {
	if New("p-1", "Alice", nil).Trained() {
		t.Error("Trained() = true without an identity vector")
	}
	if !New("p-1", "Alice", []float32{0.1}).Trained() {
		t.Error("Trained() = false with an identity vector")
	}
}
