// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typedparam

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/warden/lib/codec"
)

func TestGetByKind(t *testing.T) {
	var bag Bag
	bag.Add(String("user-name", "root"))
	bag.Add(Uint64("unix-user-id", 0))
	bag.Add(Int64("process-id", 4212))

	name, present, err := bag.GetString("user-name")
	if err != nil || !present || name != "root" {
		t.Errorf("GetString(user-name) = (%q, %v, %v), want (root, true, nil)", name, present, err)
	}

	uid, present, err := bag.GetUint64("unix-user-id")
	if err != nil || !present || uid != 0 {
		t.Errorf("GetUint64(unix-user-id) = (%d, %v, %v), want (0, true, nil)", uid, present, err)
	}

	pid, present, err := bag.GetInt64("process-id")
	if err != nil || !present || pid != 4212 {
		t.Errorf("GetInt64(process-id) = (%d, %v, %v), want (4212, true, nil)", pid, present, err)
	}
}

func TestGetAbsent(t *testing.T) {
	var bag Bag
	value, present, err := bag.GetString("user-name")
	if value != "" || present || err != nil {
		t.Errorf("GetString on empty bag = (%q, %v, %v), want (\"\", false, nil)", value, present, err)
	}
}

func TestGetKindMismatch(t *testing.T) {
	var bag Bag
	bag.Add(Uint64("unix-user-id", 1000))

	_, present, err := bag.GetString("unix-user-id")
	if present {
		t.Error("present = true for mismatched kind, want false")
	}
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("err = %v, want ErrTypeMismatch", err)
	}
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %T, want *TypeMismatchError", err)
	}
	if mismatch.Name != "unix-user-id" || mismatch.Want != KindString || mismatch.Got != KindUint64 {
		t.Errorf("mismatch = %+v", mismatch)
	}
}

func TestValidate(t *testing.T) {
	schema := map[string]Kind{
		"user-name":    KindString,
		"unix-user-id": KindUint64,
	}

	good := Bag{String("user-name", "operator"), Uint64("unix-user-id", 1000)}
	if err := good.Validate(schema); err != nil {
		t.Errorf("Validate(good) = %v, want nil", err)
	}

	unknown := Bag{String("favourite-color", "green")}
	if err := unknown.Validate(schema); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("Validate(unknown) = %v, want ErrUnknownParam", err)
	}

	mismatched := Bag{Int64("unix-user-id", 1000)}
	if err := mismatched.Validate(schema); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Validate(mismatched) = %v, want ErrTypeMismatch", err)
	}

	duplicated := Bag{String("user-name", "a"), String("user-name", "b")}
	if err := duplicated.Validate(schema); !errors.Is(err, ErrDuplicateParam) {
		t.Errorf("Validate(duplicated) = %v, want ErrDuplicateParam", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := Bag{String("user-name", "root")}
	clone := original.Clone()
	clone[0].Str = "intruder"

	name, _, _ := original.GetString("user-name")
	if name != "root" {
		t.Errorf("original mutated through clone: user-name = %q", name)
	}
}

func TestWireRoundTrip(t *testing.T) {
	in := Bag{
		String("user-name", "operator"),
		Uint64("unix-user-id", 1000),
		Int64("process-id", 9001),
	}

	data, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out Bag
	if err := codec.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded %d params, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("param %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}
