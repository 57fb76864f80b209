package main

import (
	"flag"
	"reflect"
	"testing"
)

func TestListFlag(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		set    bool
		values []string
	}{
		{"absent", nil, false, nil},
		{"repeated", []string{"-product", "Dal Voordeel", "-product", "Vol tarief"}, true, []string{"Dal Voordeel", "Vol tarief"}},
		{"explicitly empty", []string{"-product", ""}, true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			var products listFlag
			fs.Var(&products, "product", "")
			if err := fs.Parse(tc.args); err != nil {
				t.Fatal(err)
			}
			if products.set != tc.set {
				t.Errorf("set = %v, expected %v", products.set, tc.set)
			}
			if !reflect.DeepEqual(products.values, tc.values) {
				t.Errorf("values = %v, expected %v", products.values, tc.values)
			}
		})
	}
}
