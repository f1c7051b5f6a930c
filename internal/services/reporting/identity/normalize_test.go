package identity

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Drg. Wilson Sp.Ort", "wilson"},
		{"dr. Gladys M.Kes", "gladys"},
		{"Siti-Rahma Cert.Ort", "siti rahma"},
		{"Budi, S.KG", "budi s"},
		{"DRS  Ahmad   Yani", "ahmad yani"},
		{"Sp Orthodonti Rina", "rina"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tt.input); got != tt.want {
				t.Fatalf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"Drg. Wilson Sp.Ort", "dr. Gladys M.Kes", "Budi, S.KG"} {
		once := NormalizeName(input)
		if twice := NormalizeName(once); twice != once {
			t.Fatalf("NormalizeName not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"NULL", ""},
		{"None", ""},
		{"nan", ""},
		{"+62 812-3456", "08123456"},
		{"0812 77", "081277"},
		{"(021) 555", "021555"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeProductName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Komposit A2 (3M)!", "komposit a2 3m"},
		{"  GIC-Fuji   IX ", "gic fuji ix"},
		{"bracket_roth", "bracket_roth"},
	}
	for _, tt := range tests {
		if got := NormalizeProductName(tt.input); got != tt.want {
			t.Errorf("NormalizeProductName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeClinicName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Klinik Gigi Sehat - Dr. Ani", "gigi sehat ani"},
		{"RSIA Bunda", "bunda"},
		{"Apotek Kimia Farma", "kimia farma"},
		{"Praktek drg. Budi", "budi"},
	}
	for _, tt := range tests {
		if got := NormalizeClinicName(tt.input); got != tt.want {
			t.Errorf("NormalizeClinicName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExtractSalesmanCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"PS-101 Gladys", "ps101"},
		{"dc 7", "dc7"},
		{"am.. 33 budi", "am33"},
		{"ps12a", ""},
		{"gladys", ""},
		{"wilson HR.5", "hr5"},
		{"éps101", ""},
		{"ps101é", ""},
		{"gladys (ps-101)", "ps101"},
		{"ps１０１", "ps１０１"},
	}
	for _, tt := range tests {
		if got := ExtractSalesmanCode(tt.input); got != tt.want {
			t.Errorf("ExtractSalesmanCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanSalesmanName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"PS-101 Gladys", "gladys"},
		{"PS101 Gladys", "ps gladys"},
		{"Mr. Wilson_2", "wilson"},
		{"hr budi santoso", "budi santoso"},
		{"1234", ""},
		{"budi１２", "budi"},
		{"éps gladys", "é gladys"},
	}
	for _, tt := range tests {
		if got := CleanSalesmanName(tt.input); got != tt.want {
			t.Errorf("CleanSalesmanName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitSalesmanField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"GLADYS / WILSON", []string{"GLADYS", "WILSON"}},
		{"ps101&ps102,, ", []string{"ps101", "ps102"}},
		{"Budi", []string{"Budi"}},
	}
	for _, tt := range tests {
		got := SplitSalesmanField(tt.input)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("SplitSalesmanField(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"gladys wilson", "Gladys Wilson"},
		{"KOMPOSIT a2", "Komposit A2"},
		{"gizmo x2b", "Gizmo X2B"},
		{"o'neil", "O'Neil"},
		{"drg. wilson sp.ort", "Drg. Wilson Sp.Ort"},
		{"élan VITAL", "Élan Vital"},
	}
	for _, tt := range tests {
		if got := Title(tt.input); got != tt.want {
			t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
