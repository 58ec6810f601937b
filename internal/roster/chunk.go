package roster

import "unicode/utf8"

// builder accumulates chunks. Lengths are counted in runes, as the chat
// platform counts message length in characters.
type builder struct {
	soft, hard int
	out        []string
	cur        []byte
	curLen     int
}

func newBuilder(soft, hard int) *builder {
	return &builder{soft: soft, hard: hard}
}

func (b *builder) start(header string) {
	b.write(truncate(header, b.hard))
}

// section starts a role group, breaking first when the soft limit is passed
func (b *builder) section(heading string) {
	if b.curLen > b.soft || !b.fits(heading) {
		b.flush()
	}
	b.write(truncate(heading, b.hard))
}

// item appends one member. A chunk only ever breaks between members; a member
// line longer than the hard limit on its own is truncated.
func (b *builder) item(text string) {
	text = truncate(text, b.hard)
	if b.curLen > b.soft {
		b.flush()
	}
	sep := ""
	if b.curLen > 0 && b.cur[len(b.cur)-1] != '\n' {
		sep = ", "
	}
	if !b.fits(sep + text) {
		b.flush()
		sep = ""
	}
	b.write(sep + text)
}

// footer joins the last chunk, or gets a chunk of its own when it does not fit
func (b *builder) footer(text string) {
	text = truncate(text, b.hard)
	if b.curLen > 0 && b.fits("\n"+text) {
		b.write("\n" + text)
		return
	}
	b.flush()
	b.write(text)
}

func (b *builder) fits(s string) bool {
	return b.curLen+utf8.RuneCountInString(s) <= b.hard
}

func (b *builder) write(s string) {
	b.cur = append(b.cur, s...)
	b.curLen += utf8.RuneCountInString(s)
}

func (b *builder) flush() {
	if b.curLen == 0 {
		return
	}
	b.out = append(b.out, string(b.cur))
	b.cur = b.cur[:0]
	b.curLen = 0
}

func (b *builder) chunks() []string {
	b.flush()
	return b.out
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
