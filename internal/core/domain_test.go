package core

import "testing"

func TestPostingValidate(t *testing.T) {
	good := Posting{
		UserID:     "u_1",
		AccountID:  "acc_1",
		Type:       Expense,
		Amount:     150_000,
		OccurredAt: 1_700_000_000,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(p *Posting)
		want error
	}{
		{"zero amount", func(p *Posting) { p.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(p *Posting) { p.Amount = -1 }, ErrInvalidAmount},
		{"transfer type", func(p *Posting) { p.Type = Transfer }, ErrInvalidType},
		{"unknown type", func(p *Posting) { p.Type = "refund" }, ErrInvalidType},
		{"blank account", func(p *Posting) { p.AccountID = "  " }, ErrMissingAccount},
		{"no timestamp", func(p *Posting) { p.OccurredAt = 0 }, ErrInvalidTimestamp},
	}
	for _, tc := range cases {
		p := good
		tc.mut(&p)
		if err := p.Validate(); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestSignedDelta(t *testing.T) {
	if got := Income.Signed(100); got != 100 {
		t.Fatalf("income delta = %d", got)
	}
	if got := Expense.Signed(100); got != -100 {
		t.Fatalf("expense delta = %d", got)
	}
}

func TestValidateName(t *testing.T) {
	if _, err := ValidateName("   "); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	name, err := ValidateName("  Cash ")
	if err != nil || name != "Cash" {
		t.Fatalf("expected trimmed name, got %q (err=%v)", name, err)
	}
}

func TestBreakdownPercent(t *testing.T) {
	totals := []CategoryTotal{
		{CategoryID: "cat_a", Total: 750},
		{CategoryID: "cat_b", Total: 250},
	}
	pct := BreakdownPercent(totals)
	if pct[0] != 75 || pct[1] != 25 {
		t.Fatalf("unexpected percentages: %v", pct)
	}

	// all-zero breakdown must not divide by zero
	zero := BreakdownPercent([]CategoryTotal{{Total: 0}, {Total: 0}})
	for i, p := range zero {
		if p != 0 {
			t.Fatalf("bucket %d: expected 0%%, got %v", i, p)
		}
	}
	if got := BreakdownPercent(nil); len(got) != 0 {
		t.Fatalf("empty breakdown should yield no buckets")
	}
}

func TestParseIcon(t *testing.T) {
	cases := []struct {
		in   string
		want Icon
	}{
		{"mi:wifi", Icon{Library: IconMaterial, Name: "wifi"}},
		{"mc:gift-outline", Icon{Library: IconCommunity, Name: "gift-outline"}},
		{"mci:content-cut", Icon{Library: IconCommunity, Name: "content-cut"}},
		{"wallet", Icon{Library: IconMaterial, Name: "wallet"}},
		{"", Icon{}},
	}
	for _, tc := range cases {
		if got := ParseIcon(tc.in); got != tc.want {
			t.Fatalf("ParseIcon(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestIconPackRoundTrip(t *testing.T) {
	if got := (Icon{Library: IconCommunity, Name: "coffee-outline"}).Pack(); got != "mc:coffee-outline" {
		t.Fatalf("pack = %q", got)
	}
	if got := (Icon{Name: "flash-on"}).Pack(); got != "mi:flash-on" {
		t.Fatalf("bare library pack = %q", got)
	}
	if got := (Icon{}).Pack(); got != "" {
		t.Fatalf("zero icon pack = %q", got)
	}
}
