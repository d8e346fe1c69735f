package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"rolstat/domain/rol"
	"rolstat/internal/storage"
	"rolstat/ports"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyTableContainsCells(t *testing.T) {
	out := frequencyTable(rol.Build([]string{"a", "b", "b"}).Cells())
	for _, want := range []string{"Dados", "FRA", "66.67%", "100.00%"} {
		assert.Contains(t, out, want)
	}
}

func TestDescribeChange(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	payload := `["1","2"]`
	assert.Contains(t, describeChange(ports.ChangeEvent{Key: storage.KeyValues, NewValue: &payload, At: at}), "[1, 2]")
	assert.Contains(t, describeChange(ports.ChangeEvent{Key: storage.KeyValues, At: at}), "removed")

	flag := storage.GeneratedMarker
	assert.Contains(t, describeChange(ports.ChangeEvent{Key: storage.KeyGenerated, NewValue: &flag, At: at}), `"1"`)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("s\n"), &out, errors.New("ordenar?")))
	assert.Contains(t, out.String(), "ordenar?")
	assert.False(t, confirm(strings.NewReader("\n"), &out, errors.New("ordenar?")))
	assert.False(t, confirm(strings.NewReader(""), &out, errors.New("ordenar?")))
}
