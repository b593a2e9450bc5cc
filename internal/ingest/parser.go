// Package ingest turns course script files into catalog entries and
// embedded content chunks, and keeps the index in sync with a docs folder.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Yates-Labs/lectern/internal/rag"
)

var (
	ErrEmptyDocument = errors.New("document has no content")
	ErrMissingTitle  = errors.New("document has no course title")
)

var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// Document is a parsed course script: catalog metadata plus the raw text of
// each lesson, ready for chunking.
type Document struct {
	Meta    rag.CourseMeta
	Lessons []LessonText
}

// LessonText is one lesson's transcript. Preamble text before the first
// lesson heading is kept as a lesson numbered rag.NoLesson.
type LessonText struct {
	Number int
	Title  string
	Link   string
	Text   string
}

// ParseFile reads and parses a course script from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := parse(bufio.NewScanner(f))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// parse reads a course script. The expected shape is a metadata header
// (Course Title / Course Link / Course Instructor, in any order), then
// lesson sections introduced by "Lesson N: title" headings, each optionally
// followed by a "Lesson Link:" line.
func parse(scanner *bufio.Scanner) (*Document, error) {
	doc := &Document{}
	current := LessonText{Number: rag.NoLesson}
	var body strings.Builder
	inHeader := true

	flush := func() {
		text := strings.TrimSpace(body.String())
		body.Reset()
		if text == "" {
			return
		}
		current.Text = text
		doc.Lessons = append(doc.Lessons, current)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inHeader {
			switch {
			case strings.HasPrefix(line, "Course Title:"):
				doc.Meta.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
				continue
			case strings.HasPrefix(line, "Course Link:"):
				doc.Meta.CourseLink = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
				continue
			case strings.HasPrefix(line, "Course Instructor:"):
				doc.Meta.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
				continue
			case line == "":
				continue
			}
			inHeader = false
		}

		if m := lessonHeading.FindStringSubmatch(line); m != nil {
			flush()
			number, _ := strconv.Atoi(m[1])
			current = LessonText{Number: number, Title: strings.TrimSpace(m[2])}
			doc.Meta.Lessons = append(doc.Meta.Lessons, rag.Lesson{
				Number: number,
				Title:  current.Title,
			})
			continue
		}

		if strings.HasPrefix(line, "Lesson Link:") && current.Number != rag.NoLesson && current.Text == "" && body.Len() == 0 {
			link := strings.TrimSpace(strings.TrimPrefix(line, "Lesson Link:"))
			current.Link = link
			doc.Meta.Lessons[len(doc.Meta.Lessons)-1].Link = link
			continue
		}

		body.WriteString(scanner.Text())
		body.WriteString("\n")
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if doc.Meta.Title == "" {
		return nil, ErrMissingTitle
	}
	if len(doc.Lessons) == 0 {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}
