package sixel

import "reflect"

import "testing"

func TestParseParamListBasic(t *testing.T) {
	c := newCursor([]byte("1;2;300"))
	got := parseParamList(c)
	want := []int{1, 2, 300}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseParamListEmptyFields(t *testing.T) {
	c := newCursor([]byte(";5;"))
	got := parseParamList(c)
	want := []int{0, 5, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseParamListSaturates(t *testing.T) {
	c := newCursor([]byte("999999"))
	got := parseParamList(c)
	if len(got) != 1 || got[0] != maxParamValue {
		t.Fatalf("got %v, want [%d]", got, maxParamValue)
	}
}

func TestParamAtDefault(t *testing.T) {
	params := []int{1, 2}
	if v := paramAt(params, 0, 99); v != 1 {
		t.Errorf("index 0: got %d, want 1", v)
	}
	if v := paramAt(params, 5, 99); v != 99 {
		t.Errorf("out of range: got %d, want default 99", v)
	}
	if v := paramAt(params, -1, 99); v != 99 {
		t.Errorf("negative index: got %d, want default 99", v)
	}
}
