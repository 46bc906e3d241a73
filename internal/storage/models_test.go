package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullNameSkipsEmptyParts(t *testing.T) {
	c := &Candidate{FirstName: "Maria", LastName: "Lopez"}
	assert.Equal(t, "Maria Lopez", c.FullName())

	c.MaternalLastName = "Garcia"
	assert.Equal(t, "Maria Lopez Garcia", c.FullName())

	c = &Candidate{FirstName: "  Maria  ", LastName: ""}
	assert.Equal(t, "Maria", c.FullName())

	assert.Equal(t, "", (&Candidate{}).FullName())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"driver", "warehouse"}, splitAndTrim("driver, warehouse"))
	assert.Equal(t, []string{"driver"}, splitAndTrim("driver,,  "))
	assert.Empty(t, splitAndTrim(""))
}
