package app

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/bft-labs/storytext/internal/domain"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []domain.Keyword
		wantErr bool
	}{
		{
			name:  "records",
			input: "harbour,7,1.0\nferry,7,0.25\n",
			want: []domain.Keyword{
				{Word: "harbour", EditionID: 7, Ratio: 1},
				{Word: "ferry", EditionID: 7, Ratio: 0.25},
			},
		},
		{
			name:  "spaces and blank lines",
			input: "\nharbour, 7, 0.5\n\n",
			want:  []domain.Keyword{{Word: "harbour", EditionID: 7, Ratio: 0.5}},
		},
		{name: "empty", input: "", want: []domain.Keyword{}},
		{name: "too few fields", input: "harbour,7\n", wantErr: true},
		{name: "bad id", input: "harbour,seven,1\n", wantErr: true},
		{name: "bad ratio", input: "harbour,7,lots\n", wantErr: true},
		{name: "empty word", input: " ,7,1\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeywords([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKeywords() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeywords() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTagger_Tag(t *testing.T) {
	req := domain.TagRequest{
		EditionID: 12,
		Title:     "Winter",
		Author:    "Ann",
		Stories:   []domain.StoryText{{Title: "Ice", Author: "Ann", Text: "cold water"}},
	}

	tests := []struct {
		name       string
		outcome    func(domain.Invocation) domain.Outcome
		want       []domain.Keyword
		wantResult domain.Result
	}{
		{
			name:       "keywords",
			outcome:    exitWith(0, "ice,12,1\ncold,12,0.5\n", ""),
			want:       []domain.Keyword{{Word: "ice", EditionID: 12, Ratio: 1}, {Word: "cold", EditionID: 12, Ratio: 0.5}},
			wantResult: domain.ResultOK,
		},
		{
			name:       "filtered lowercased and merged",
			outcome:    exitWith(0, "Hello,1,0.1\nhello,1,0.5\nWorld,1,1\n", ""),
			want:       []domain.Keyword{{Word: "hello", EditionID: 1, Ratio: 0.5}, {Word: "world", EditionID: 1, Ratio: 1}},
			wantResult: domain.ResultOK,
		},
		{
			name:       "all below threshold",
			outcome:    exitWith(0, "a,12,0.2\nthe,12,0.3\n", ""),
			want:       []domain.Keyword{},
			wantResult: domain.ResultOK,
		},
		{
			name:       "malformed",
			outcome:    exitWith(0, "ice;12;1\n", ""),
			want:       []domain.Keyword{},
			wantResult: domain.ResultMalformedOutput,
		},
		{
			name:       "nonzero exit",
			outcome:    exitWith(2, "", "usage"),
			want:       []domain.Keyword{},
			wantResult: domain.ResultNonZeroExit,
		},
		{
			name:       "timed out",
			outcome:    timedOut,
			want:       []domain.Keyword{},
			wantResult: domain.ResultTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{outcome: tt.outcome}
			recorder := &mockRecorder{}
			tagger := NewTagger(
				TaggerConfig{Script: "txt_tag/txt_tag.py", Timeout: DefaultTagTimeout},
				runner,
				domain.NewScriptLocator("/opt/scripts", ""),
				&mockLogger{},
				recorder,
			)

			got := tagger.Tag(context.Background(), req)

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tag() = %+v, want %+v", got, tt.want)
			}
			if results := recorder.Results(); len(results) != 1 || results[0] != tt.wantResult {
				t.Errorf("recorded %v, want [%s]", results, tt.wantResult)
			}

			calls := runner.Calls()
			if len(calls) != 1 {
				t.Fatalf("runner called %d times, want 1", len(calls))
			}
			inv := calls[0]
			if inv.Executable() != "/opt/scripts/txt_tag/txt_tag.py" {
				t.Errorf("Executable() = %q", inv.Executable())
			}
			if !reflect.DeepEqual(inv.Args(), []string{"--stdin"}) {
				t.Errorf("Args() = %q, want [--stdin]", inv.Args())
			}
			var sent domain.TagRequest
			if err := json.Unmarshal(inv.Payload(), &sent); err != nil {
				t.Fatalf("payload is not JSON: %v", err)
			}
			if !reflect.DeepEqual(sent, req) {
				t.Errorf("payload = %+v, want %+v", sent, req)
			}
		})
	}
}
