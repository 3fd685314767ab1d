// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pilosa/txnimport"
	"github.com/pkg/errors"
)

// Source satisfies the txnimport.Source interface for CSV data. The whole
// input is read into memory by Rows. The first line of the input is the
// header.
//
// If reading fails part way through, the input is reopened and read again
// from the beginning, up to a maximum number of tries.
type Source struct {
	opener     OpenStringer
	maxRetries int
	log        txnimport.Logger

	content io.ReadCloser
}

var _ txnimport.Source = &Source{}

// NewSource creates a txnimport.Source for CSV data. The location of the raw
// data is set by using Options defined in this package. e.g.
//
// src := NewSource(WithURL("transactions.csv"))
func NewSource(options ...Option) (*Source, error) {
	src := &Source{
		maxRetries: 3,
		log:        txnimport.NopLogger{},
	}
	for _, opt := range options {
		opt(src)
	}
	if src.opener == nil {
		return nil, errors.New("no input location given")
	}
	return src, nil
}

// Option is a functional option to pass to NewSource.
type Option func(*Source)

// WithURL returns an Option which sets the input of a Source. The URL may be
// HTTP(S) or a local file.
func WithURL(url string) Option {
	return func(s *Source) {
		s.opener = urlOpener(url)
	}
}

// WithOpenStringer returns an Option which sets the input of a Source.
func WithOpenStringer(os OpenStringer) Option {
	return func(s *Source) {
		s.opener = os
	}
}

// WithMaxRetries returns an Option which sets the max number of times the
// input is read before giving up.
func WithMaxRetries(maxRetries int) Option {
	return func(s *Source) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
	}
}

// WithLogger returns an Option which sets the logger a Source reports
// malformed lines to.
func WithLogger(log txnimport.Logger) Option {
	return func(s *Source) {
		s.log = log
	}
}

// Opener is an interface to a resource which can be repeatedly Opened (and the
// returned ReadCloser can be subsequently read). Each call to Open should
// return a ReadCloser which reads from the beginning of the resource. When
// the resource doesn't exist, the cause of the returned error should be
// txnimport.ErrSourceNotFound.
type Opener interface {
	Open() (io.ReadCloser, error)
}

// OpenStringer is an Opener which also has a String method which should return
// the name of the resource being opened (e.g. a file or URL).
type OpenStringer interface {
	fmt.Stringer
	Opener
}

// urlOpener turns a URL or file (string) into an OpenStringer.
type urlOpener string

func (u urlOpener) Open() (io.ReadCloser, error) {
	url := string(u)
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		resp, err := http.Get(url) // nolint: gosec
		if err != nil {
			return nil, errors.Wrap(err, "getting via http")
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, errors.Wrapf(txnimport.ErrSourceNotFound, "getting %s", url)
		}
		if resp.StatusCode > 299 {
			resp.Body.Close()
			return nil, errors.Errorf("got status %d via http.Get", resp.StatusCode)
		}
		return resp.Body, nil
	}
	f, err := os.Open(strings.TrimPrefix(url, "file://"))
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(txnimport.ErrSourceNotFound, "opening file %s", url)
	} else if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	return f, nil
}

func (u urlOpener) String() string {
	return string(u)
}

// String returns the name of the input.
func (s *Source) String() string {
	return s.opener.String()
}

// Open opens the input, failing if it doesn't exist.
func (s *Source) Open() error {
	if s.content != nil {
		return nil
	}
	content, err := s.opener.Open()
	if err != nil {
		return errors.Wrapf(err, "opening %s", s.opener)
	}
	s.content = content
	return nil
}

// Close closes the input if it's open.
func (s *Source) Close() error {
	if s.content == nil {
		return nil
	}
	err := s.content.Close()
	s.content = nil
	return errors.Wrap(err, "closing")
}

// Rows reads every data row of the input. Lines which can't be parsed come
// back as rows with Err set. An invalid header is an error.
func (s *Source) Rows() ([]*txnimport.Row, error) {
	var err error
	for try := 0; try < s.maxRetries; try++ {
		if err = s.Open(); err != nil {
			return nil, err
		}
		var rows []*txnimport.Row
		rows, err = s.readRows(s.content)
		if err == nil {
			return rows, nil
		}
		if _, ok := errors.Cause(err).(headerError); ok {
			return nil, err
		}
		s.log.Printf("reading %s failed, try %d of %d: %v", s, try+1, s.maxRetries, err)
		s.Close()
	}
	return nil, errors.Wrapf(err, "couldn't read '%s' - tried %d times, latest", s, s.maxRetries)
}

type headerError struct {
	error
}

// utf8BOM is sometimes written at the start of CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (s *Source) readRows(content io.Reader) ([]*txnimport.Row, error) {
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, content); err != nil {
		return nil, errors.Wrap(err, "reading")
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	names, err := r.Read()
	if err == io.EOF {
		return nil, headerError{errors.New("input is empty")}
	} else if err != nil {
		return nil, headerError{errors.Wrap(err, "reading header")}
	}
	header, err := txnimport.NewHeader(names)
	if err != nil {
		return nil, headerError{errors.Wrapf(err, "validating header of %s", s)}
	}

	rows := make([]*txnimport.Row, 0)
	for pos := 0; ; pos++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if pe, ok := err.(*csv.ParseError); ok {
			rows = append(rows, &txnimport.Row{Position: pos, Err: errors.Wrapf(pe, "parsing %s", s)})
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading %s", s)
		}
		values, err := s.parseRecord(header, rec)
		if err != nil {
			line, _ := r.FieldPos(0)
			rows = append(rows, &txnimport.Row{Position: pos, Err: errors.Wrapf(err, "file %s: parsing line %d", s, line)})
			continue
		}
		rows = append(rows, txnimport.NewRow(header, pos, values))
	}
	return rows, nil
}

func (s *Source) parseRecord(header *txnimport.Header, row []string) ([]string, error) {
	if header.Len() > len(row) {
		return nil, errors.Errorf("header/row len mismatch: %dvs%d, %v and %v", header.Len(), len(row), header.Names(), row)
	} else if len(row) > header.Len() {
		for i := header.Len(); i < len(row); i++ {
			if strings.TrimSpace(row[i]) != "" {
				s.log.Printf("data in non headered field: %v, %d", row, i)
				break
			}
		}
	}
	return row[:header.Len()], nil
}
