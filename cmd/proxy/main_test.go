package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsolePrompter_ReadsOneLine(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("looks good\nextra\n"), &out)

	reply, err := p.Prompt("Provide feedback: ")

	assert.NoError(t, err)
	assert.Equal(t, "looks good", reply)
	assert.Equal(t, "Provide feedback: ", out.String())
}

func TestConsolePrompter_TrimsCarriageReturn(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("exit\r\n"), &out)

	reply, err := p.Prompt(">> ")

	assert.NoError(t, err)
	assert.Equal(t, "exit", reply)
}

func TestConsolePrompter_EOFWithoutInput(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader(""), &out)

	_, err := p.Prompt(">> ")

	assert.Error(t, err)
}

func TestConsolePrompter_LastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	p := NewConsolePrompter(strings.NewReader("final answer"), &out)

	reply, err := p.Prompt(">> ")

	assert.NoError(t, err)
	assert.Equal(t, "final answer", reply)
}
