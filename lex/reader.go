package lex

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// Reader is the character source the lexer reads from. It buffers everything
// it pulls from the underlying reader so that positions can be marked and
// returned to, which is what lets regexes be run against a stream without
// losing the characters they inspected but did not match.
//
// Reader implements io.Reader, io.RuneReader, and io.Seeker. Seeking is
// relative to the buffered bytes; SeekEnd means the end of what has been
// buffered so far, not the end of the underlying input.
type Reader struct {
	b     []byte
	r     *bufio.Reader
	cur   int
	marks map[string]int
	atEOF bool
}

// NewReader creates a Reader on top of the given input.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		b:     make([]byte, 0),
		r:     bufio.NewReader(r),
		marks: make(map[string]int),
	}
}

func (rr *Reader) avail() int {
	return len(rr.b) - rr.cur
}

// reads up to n bytes from the buffer and advances the cursor by the number of
// bytes actually read.
func (rr *Reader) readBuf(n int) []byte {
	limit := rr.avail()
	if n < limit {
		limit = n
	}

	read := rr.b[rr.cur : rr.cur+limit]
	rr.cur += limit
	return read
}

// pulls up to n bytes from the underlying reader into the buffer. Does not
// move the cursor.
func (rr *Reader) readIntoBuf(n int) (actualRead int, err error) {
	read := make([]byte, n)

	actualRead, err = rr.r.Read(read)
	// anything read must be buffered even if an error came back with it
	if actualRead > 0 {
		rr.b = append(rr.b, read[:actualRead]...)
	}

	return actualRead, err
}

// SearchAndAdvance applies the given regular expression at the current
// position and moves the cursor to just past the matched text. If there is no
// match, the cursor is not advanced at all and a nil slice is returned;
// otherwise the return value is a slice of submatch texts where index 0 is the
// entire match.
//
// Uses (and will overwrite) the mark named "SEARCH_AND_ADVANCE".
//
// Returns io.EOF as the error value if at the end of the stream. The reader
// can never detect that it is at EOF until there is a failure to match, so any
// successful match results in a nil error and non-nil matches.
func (rr *Reader) SearchAndAdvance(re *regexp.Regexp) ([]string, error) {
	rr.Mark("SEARCH_AND_ADVANCE")
	matchIndexes := re.FindReaderSubmatchIndex(rr)
	matches := rr.GetMatches("SEARCH_AND_ADVANCE", matchIndexes)
	rr.Restore("SEARCH_AND_ADVANCE")

	if len(matches) > 0 {
		rr.Seek(int64(matchIndexes[1]), io.SeekCurrent)
		return matches, nil
	}

	// no match. was it because the underlying reader is exhausted? check by
	// going to the end of the buffer and attempting one more read.
	_, err := rr.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seeking to end of buffer: %w", err)
	}

	_, err = rr.Read(make([]byte, 1))
	if err == io.EOF {
		rr.atEOF = true
	}
	if err != nil {
		return nil, err
	}

	// plain no-match on a live reader; put the cursor back
	rr.Restore("SEARCH_AND_ADVANCE")
	return matches, nil
}

// TryMatch applies the given regular expression at the current position
// without advancing the cursor, no matter the result. The return value is a
// slice of submatch texts where index 0 is the entire match, or nil if there
// was no match.
//
// Uses (and will overwrite) the mark named "TRY_MATCH". The returned error is
// io.EOF only when the underlying input was already exhausted before the
// attempt; a failed match on live input returns (nil, nil).
func (rr *Reader) TryMatch(re *regexp.Regexp) ([]string, error) {
	if rr.atEOF && rr.avail() == 0 {
		return nil, io.EOF
	}

	rr.Mark("TRY_MATCH")
	matchIndexes := re.FindReaderSubmatchIndex(rr)
	matches := rr.GetMatches("TRY_MATCH", matchIndexes)
	rr.Restore("TRY_MATCH")

	return matches, nil
}

// Exhausted reports whether the underlying input has run dry and every
// buffered byte past the cursor has been consumed. It probes the underlying
// reader if needed; the cursor is left where it was.
func (rr *Reader) Exhausted() (bool, error) {
	orig := rr.cur
	rr.Mark("EXHAUSTED")
	defer rr.Restore("EXHAUSTED")

	rr.Seek(0, io.SeekEnd)
	_, err := rr.Read(make([]byte, 1))
	if err == io.EOF {
		rr.atEOF = true
		return orig == len(rr.b), nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// GetMatches reads the strings located at the given index pairs relative to
// the named mark. It is designed to retrieve the results of
// regexp.FindReaderSubmatchIndex: call Mark with some name, immediately run
// FindReaderSubmatchIndex on this reader, then pass the returned pairs here
// along with the mark name.
//
// The returned slice holds one string per submatch group, with group 0 being
// the entire match. A group that did not participate in the match is an empty
// string. If there was no match at all, the returned slice is nil.
func (rr *Reader) GetMatches(mark string, pairs []int) []string {
	markOffset, ok := rr.marks[mark]
	if !ok {
		panic(fmt.Sprintf("invalid mark name: %q", mark))
	}

	if len(pairs) == 0 {
		return nil
	}

	matches := make([]string, len(pairs)/2)
	matches[0] = string(rr.b[markOffset+pairs[0] : markOffset+pairs[1]])

	for i := 2; i < len(pairs); i += 2 {
		left := pairs[i]
		right := pairs[i+1]
		if left != -1 && right != -1 {
			matches[i/2] = string(rr.b[markOffset+left : markOffset+right])
		}
	}

	return matches
}

// ReadRune reads a single UTF-8 encoded character and returns it along with
// the number of bytes consumed.
func (rr *Reader) ReadRune() (r rune, size int, err error) {
	// read one byte; its high bits say how many more are in the character
	charBytes := make([]byte, 1)
	n, err := rr.Read(charBytes)
	if n != 1 {
		return r, size, err
	}

	var setErr error
	if err != nil {
		setErr = err
	}

	firstByte := charBytes[0]
	var remBytes int

	if firstByte>>7 == 0 {
		// 0xxxxxxx, 1-byte rune
		remBytes = 0
	} else if firstByte>>5 == 0b110 {
		// 110xxxxx, 2-byte rune
		remBytes = 1
	} else if firstByte>>4 == 0b1110 {
		// 1110xxxx, 3-byte rune
		remBytes = 2
	} else if firstByte>>3 == 0b11110 {
		// 11110xxx, 4-byte rune
		remBytes = 3
	}

	if remBytes > 0 {
		if setErr != nil && setErr != io.EOF {
			return r, n, setErr
		}
		additionalCharBytes := make([]byte, remBytes)
		n, err := rr.Read(additionalCharBytes)
		if n != remBytes {
			if err == io.EOF {
				return r, n, fmt.Errorf("couldn't read all bytes of utf-8 character")
			}
			return r, n, err
		}
		setErr = err
		charBytes = append(charBytes, additionalCharBytes...)
	}

	r, size = utf8.DecodeRune(charBytes)

	// if the decode took fewer bytes than were read, back the cursor up so
	// the extra bytes are read again next time
	missedBy := len(charBytes) - size
	if missedBy > 0 {
		rr.cur -= missedBy
	}

	return r, size, setErr
}

// Mark creates a new marker with the given name at the current offset, for
// later use with Restore.
func (rr *Reader) Mark(name string) {
	rr.marks[name] = rr.cur
}

// Restore seeks back to the marker with the given name. Panics if the name
// doesn't exist.
func (rr *Reader) Restore(name string) {
	offset, ok := rr.marks[name]
	if !ok {
		panic(fmt.Sprintf("invalid mark name: %q", name))
	}

	rr.cur = offset
}

// Offset returns the current absolute offset into the buffered bytes. The
// returned number, if passed to Seek with a whence of SeekStart, would put
// the reader back at this exact position.
func (rr *Reader) Offset() int64 {
	return int64(rr.cur)
}

// Read reads up to len(p) bytes, pulling from the underlying reader as
// needed.
func (rr *Reader) Read(p []byte) (n int, err error) {
	read := rr.readBuf(len(p))
	stillNeed := len(p) - len(read)

	if stillNeed > 0 {
		var actualRead int
		actualRead, err = rr.readIntoBuf(stillNeed)
		if actualRead > 0 {
			readAdd := rr.readBuf(actualRead)
			read = append(read, readAdd...)
		}
	}

	n = len(read)
	copy(p, read)
	return n, err
}

// Seek moves the internal cursor to the provided offset.
func (rr *Reader) Seek(offset int64, whence int) (int64, error) {
	var newOffset int64
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekCurrent:
		newOffset = int64(rr.cur) + offset
	case io.SeekEnd:
		newOffset = int64(len(rr.b)) + offset
	default:
		return 0, fmt.Errorf("unknown whence argument: %v", whence)
	}

	if newOffset < 0 {
		return 0, fmt.Errorf("resulting absolute offset specifies index before start of file: %d", newOffset)
	}
	if newOffset > int64(len(rr.b)) {
		newOffset = int64(len(rr.b))
	}

	rr.cur = int(newOffset)
	return newOffset, nil
}
