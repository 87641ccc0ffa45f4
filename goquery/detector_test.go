package goquery_test

import (
	"testing"

	"github.com/joblens/joblens"
	"github.com/joblens/joblens/goquery"
	"github.com/stretchr/testify/assert"
)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		html string
		want joblens.Board
	}{
		{
			name: "greenhouse by host",
			url:  "https://boards.greenhouse.io/acme/jobs/123",
			html: "<html><body></body></html>",
			want: joblens.BoardGreenhouse,
		},
		{
			name: "greenhouse embed on company site",
			url:  "https://acme.com/careers/123",
			html: `<html><body><div id="grnhse_app"></div></body></html>`,
			want: joblens.BoardGreenhouse,
		},
		{
			name: "lever by host",
			url:  "https://jobs.lever.co/acme/abc-def",
			html: "<html><body></body></html>",
			want: joblens.BoardLever,
		},
		{
			name: "lever by posting markup",
			url:  "https://acme.com/jobs/1",
			html: `<html><body><div class="posting-headline"><h2>Engineer</h2></div></body></html>`,
			want: joblens.BoardLever,
		},
		{
			name: "linkedin by host",
			url:  "https://www.linkedin.com/jobs/view/4012345678",
			html: "<html><body></body></html>",
			want: joblens.BoardLinkedIn,
		},
		{
			name: "indeed by description container",
			url:  "https://example.com/viewjob",
			html: `<html><body><div id="jobDescriptionText">Build things.</div></body></html>`,
			want: joblens.BoardIndeed,
		},
		{
			name: "glassdoor by data-test attribute",
			url:  "https://example.com/job-listing",
			html: `<html><body><section data-test="jobDescription">Build things.</section></body></html>`,
			want: joblens.BoardGlassdoor,
		},
		{
			name: "workable by host",
			url:  "https://apply.workable.com/acme/j/ABC123",
			html: "<html><body></body></html>",
			want: joblens.BoardWorkable,
		},
		{
			name: "plain company page is unknown",
			url:  "https://acme.com/careers/engineer",
			html: `<html><body><main><h1>Engineer</h1><p>Join us.</p></main></body></html>`,
			want: joblens.BoardUnknown,
		},
		{
			name: "unparseable html is unknown",
			url:  "https://acme.com/careers",
			html: "",
			want: joblens.BoardUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := goquery.NewDetector().Detect(tt.url, tt.html)
			assert.Equal(t, tt.want, got)
		})
	}
}
