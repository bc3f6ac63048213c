package specgrammar

import "testing"

func TestParseMixedSpec(t *testing.T) {
	fields, err := Parse("imm3(3) Rn(3) Rd(3)")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("Parse returned %d fields, want 3", len(fields))
	}
	for i, want := range []string{"imm3", "Rn", "Rd"} {
		if fields[i].Kind != FieldName || fields[i].Name != want || fields[i].Width != 3 {
			t.Errorf("field %d = %+v, want Name=%q Width=3", i, fields[i], want)
		}
	}
}

func TestParseBareIdentifierImplicitWidth(t *testing.T) {
	fields, err := Parse("S Rd")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(fields) != 2 || fields[0].Width != 1 || fields[1].Width != 1 {
		t.Fatalf("Parse(\"S Rd\") = %+v, want two width-1 fields", fields)
	}
}

func TestParseBits(t *testing.T) {
	fields, err := Parse("0 1 1 0 0 0 0")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(fields) != 7 {
		t.Fatalf("Parse returned %d fields, want 7", len(fields))
	}
	want := []int{0, 1, 1, 0, 0, 0, 0}
	for i, w := range want {
		if fields[i].Kind != FieldBit || fields[i].Bit != w {
			t.Errorf("field %d = %+v, want bit %d", i, fields[i], w)
		}
	}
}

func TestParseFixedValueField(t *testing.T) {
	fields, err := Parse("stype=01 imm5(5)")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if fields[0].Kind != FieldFixed || fields[0].Name != "stype" || fields[0].Bits != "01" || fields[0].Width != 2 {
		t.Errorf("field 0 = %+v, want FieldFixed stype=01 width 2", fields[0])
	}
	if fields[1].Kind != FieldName || fields[1].Name != "imm5" || fields[1].Width != 5 {
		t.Errorf("field 1 = %+v, want FieldName imm5 width 5", fields[1])
	}
}

func TestParseEmptyParensDefaultsToWidthOne(t *testing.T) {
	fields, err := Parse("Rd()")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(fields) != 1 || fields[0].Width != 1 {
		t.Fatalf("Parse(\"Rd()\") = %+v, want single width-1 field", fields)
	}
}

func TestParseRejectsUnterminatedWidth(t *testing.T) {
	if _, err := Parse("imm3(3"); err == nil {
		t.Errorf("Parse(\"imm3(3\") expected error, got none")
	}
}

func TestLayoutOrdersFromBitZero(t *testing.T) {
	fields, err := Parse("imm3(3) Rn(3) Rd(3)")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	mask, _, positions, width, err := Layout(fields)
	if err != nil {
		t.Fatalf("Layout: unexpected error: %v", err)
	}
	if width != 9 {
		t.Fatalf("Layout width = %d, want 9", width)
	}
	if mask != 0 {
		t.Errorf("Layout mask = %#x, want 0 (no constant bits)", mask)
	}
	wantPos := map[string]uint{"Rd": 0, "Rn": 3, "imm3": 6}
	if len(positions) != 3 {
		t.Fatalf("Layout positions = %+v, want 3 entries", positions)
	}
	for _, p := range positions {
		if wantPos[p.Name] != p.Pos {
			t.Errorf("field %q at bit %d, want %d", p.Name, p.Pos, wantPos[p.Name])
		}
	}
}

func TestLayoutFixedFieldContributesToMaskNotPositions(t *testing.T) {
	fields, err := Parse("stype=01 imm5(5) Rm(3) Rd(3)")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	mask, match, positions, width, err := Layout(fields)
	if err != nil {
		t.Fatalf("Layout: unexpected error: %v", err)
	}
	if width != 13 {
		t.Fatalf("Layout width = %d, want 13", width)
	}
	// stype occupies bits [11:13), fixed to 0b01.
	wantMask := uint64(0b11) << 11
	if mask != wantMask {
		t.Errorf("Layout mask = %#x, want %#x", mask, wantMask)
	}
	wantMatch := uint64(0b01) << 11
	if match != wantMatch {
		t.Errorf("Layout match = %#x, want %#x", match, wantMatch)
	}
	for _, p := range positions {
		if p.Name == "stype" {
			t.Errorf("fixed field %q must not appear in extractable positions", p.Name)
		}
	}
	if len(positions) != 3 {
		t.Errorf("Layout positions = %+v, want 3 extractable fields (imm5, Rm, Rd)", positions)
	}
}

func TestLayoutConstantBits(t *testing.T) {
	fields, err := Parse("0 1 1 0 0 0 0 Rm(3) Rn(3) Rd(3)")
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	mask, match, _, width, err := Layout(fields)
	if err != nil {
		t.Fatalf("Layout: unexpected error: %v", err)
	}
	if width != 16 {
		t.Fatalf("Layout width = %d, want 16", width)
	}
	wantMask := uint64(0b1111111) << 9
	if mask != wantMask {
		t.Errorf("Layout mask = %#016b, want %#016b", mask, wantMask)
	}
	wantMatch := uint64(0b0110000) << 9
	if match != wantMatch {
		t.Errorf("Layout match = %#016b, want %#016b", match, wantMatch)
	}
}
