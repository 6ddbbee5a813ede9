package lex

import (
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Reader_markAndRestore(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("hello, world"))

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	assert.NoError(err)
	assert.Equal(5, n)
	assert.Equal("hello", string(buf))

	r.Mark("comma")

	n, err = r.Read(buf)
	assert.NoError(err)
	assert.Equal(5, n)
	assert.Equal(", wor", string(buf))

	// restoring rewinds into the buffered bytes, so the same text comes back
	r.Restore("comma")
	n, err = r.Read(buf)
	assert.NoError(err)
	assert.Equal(5, n)
	assert.Equal(", wor", string(buf))
}

func Test_Reader_restoreUnknownMarkPanics(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("x"))
	assert.Panics(func() {
		r.Restore("never made")
	})
}

func Test_Reader_TryMatch(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("123abc"))
	digits := regexp.MustCompile(`^[0-9]+`)
	letters := regexp.MustCompile(`^[a-z]+`)

	matches, err := r.TryMatch(digits)
	assert.NoError(err)
	if !assert.Len(matches, 1) {
		return
	}
	assert.Equal("123", matches[0])

	// the cursor did not move, so the same match is still there
	matches, err = r.TryMatch(digits)
	assert.NoError(err)
	if !assert.Len(matches, 1) {
		return
	}
	assert.Equal("123", matches[0])

	// a failed match on live input is not an error
	matches, err = r.TryMatch(letters)
	assert.NoError(err)
	assert.Nil(matches)
}

func Test_Reader_SearchAndAdvance(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("123abc"))
	digits := regexp.MustCompile(`^[0-9]+`)
	letters := regexp.MustCompile(`^[a-z]+`)

	matches, err := r.SearchAndAdvance(digits)
	assert.NoError(err)
	if !assert.Len(matches, 1) {
		return
	}
	assert.Equal("123", matches[0])

	// advanced past the digits, so letters match now
	matches, err = r.SearchAndAdvance(letters)
	assert.NoError(err)
	if !assert.Len(matches, 1) {
		return
	}
	assert.Equal("abc", matches[0])

	_, err = r.SearchAndAdvance(digits)
	assert.ErrorIs(err, io.EOF)
}

func Test_Reader_Exhausted(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("ab"))

	done, err := r.Exhausted()
	assert.NoError(err)
	assert.False(done)

	buf := make([]byte, 2)
	_, err = r.Read(buf)
	assert.NoError(err)

	done, err = r.Exhausted()
	assert.NoError(err)
	assert.True(done)
}

func Test_Reader_ReadRune(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader("aß語"))

	ch, size, err := r.ReadRune()
	assert.NoError(err)
	assert.Equal('a', ch)
	assert.Equal(1, size)

	ch, size, err = r.ReadRune()
	assert.NoError(err)
	assert.Equal('ß', ch)
	assert.Equal(2, size)

	ch, size, err = r.ReadRune()
	assert.NoError(err)
	assert.Equal('語', ch)
	assert.Equal(3, size)
}
