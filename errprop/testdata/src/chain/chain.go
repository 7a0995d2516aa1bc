package main

import (
	"errors"
	"fmt"
)

var errMissing = errors.New("missing")

func read(name string) (string, error) {
	if name == "" {
		return "", errMissing
	}
	return name, nil
}

func load(name string) (string, error) {
	data, err := read(name)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

func main() {
	if _, err := load("config"); err != nil { // want `chain\.main handles error propagated along chain\.main -> chain\.load -> chain\.read` `chain\.main handles error propagated along chain\.main -> chain\.load -> fmt\.Errorf`
		println(err.Error())
	}
}
