package pipeline

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/rulebook/pkg/cache"
	"github.com/matzehuels/rulebook/pkg/errors"
	"github.com/matzehuels/rulebook/pkg/observability"
	"github.com/matzehuels/rulebook/pkg/render/manuscript"
	"github.com/matzehuels/rulebook/pkg/render/outline"
	"github.com/matzehuels/rulebook/pkg/rulebook"
)

func sampleDocument() *rulebook.Document {
	return &rulebook.Document{Headers: []*rulebook.Header{{
		ID:   "H1",
		Text: "Scope",
		Sections: []*rulebook.Section{{
			ID:   "S1",
			Text: "Intro",
			Entries: []rulebook.Entry{
				&rulebook.Rule{ID: "R1", Text: rulebook.Plain("Do X"), Section: true},
				&rulebook.Rule{ID: "R2", Text: rulebook.Text{{Kind: rulebook.SpanPlain, Value: "see "}, rulebook.Ref("R1")}},
			},
		}},
	}}}
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"html", false},
		{"latex", false},
		{"dot", false},
		{"svg", false},
		{"pdf", true},
		{"HTML", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"html", "latex"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"html", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", DefaultFormats},
		{" , ", DefaultFormats},
		{"html", []string{"html"}},
		{"html, latex ,svg", []string{"html", "latex", "svg"}},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if !reflect.DeepEqual(opts.Formats, DefaultFormats) {
		t.Errorf("Formats = %v, want %v", opts.Formats, DefaultFormats)
	}
	if opts.Template == nil || opts.Logger == nil {
		t.Error("template and logger should default")
	}

	bad := Options{Formats: []string{"html"}}
	bad.Diagram.Depth = 7
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("depth 7: err = %v", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{}
	opts.Diagram.Depth = 2

	if got := opts.ArtifactKeyOpts(FormatHTML, "t"); got != (cache.ArtifactKeyOpts{Format: FormatHTML}) {
		t.Errorf("html key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatLaTeX, "t"); got.TemplateHash != "t" || got.Depth != 0 {
		t.Errorf("latex key opts = %+v", got)
	}
	if got := opts.ArtifactKeyOpts(FormatSVG, "t"); got.TemplateHash != "" || got.Depth != 2 {
		t.Errorf("svg key opts = %+v", got)
	}
}

func TestExecute(t *testing.T) {
	doc := sampleDocument()
	runner := NewRunner(nil, nil, nil)

	res, err := runner.Execute(context.Background(), doc, Options{
		Formats:  []string{FormatHTML, FormatLaTeX, FormatDOT},
		Template: manuscript.StringTemplate("<" + manuscript.DocumentPlaceholder + ">"),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	refs, _ := rulebook.BuildRefs(doc)
	if !reflect.DeepEqual(res.Refs, refs) {
		t.Errorf("Refs = %v", res.Refs)
	}
	if res.Stats.Entries != 4 {
		t.Errorf("Entries = %d, want 4", res.Stats.Entries)
	}

	html, _ := outline.Render(doc, refs)
	if string(res.Artifacts[FormatHTML]) != html {
		t.Errorf("html artifact = %s", res.Artifacts[FormatHTML])
	}
	body, _ := manuscript.Body(doc, refs)
	if string(res.Artifacts[FormatLaTeX]) != "<"+body+">" {
		t.Errorf("latex artifact = %s", res.Artifacts[FormatLaTeX])
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %s", res.Artifacts[FormatDOT])
	}
	if res.CacheInfo.RenderHit {
		t.Error("NullCache run reported a cache hit")
	}
	if len(res.DocumentHash) != 64 {
		t.Errorf("DocumentHash = %q", res.DocumentHash)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	runner := newFileRunner(t)
	defer runner.Close()

	opts := Options{Formats: []string{FormatHTML, FormatLaTeX}}
	first, err := runner.Execute(ctx, sampleDocument(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(first.CacheInfo.Hits) != 0 {
		t.Errorf("first run hits = %v", first.CacheInfo.Hits)
	}

	second, err := runner.Execute(ctx, sampleDocument(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Errorf("second run hits = %v, want all", second.CacheInfo.Hits)
	}
	if !reflect.DeepEqual(first.Artifacts, second.Artifacts) {
		t.Error("cached artifacts differ from rendered ones")
	}

	// A different template invalidates only the LaTeX artifact.
	opts.Template = manuscript.StringTemplate(manuscript.DocumentPlaceholder)
	third, err := runner.Execute(ctx, sampleDocument(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !reflect.DeepEqual(third.CacheInfo.Hits, []string{FormatHTML}) {
		t.Errorf("hits after template change = %v, want [html]", third.CacheInfo.Hits)
	}

	// Refresh skips lookups.
	opts.Refresh = true
	fourth, err := runner.Execute(ctx, sampleDocument(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fourth.CacheInfo.Hits) != 0 {
		t.Errorf("refresh run hits = %v", fourth.CacheInfo.Hits)
	}
}

func TestExecuteChangedDocumentMisses(t *testing.T) {
	ctx := context.Background()
	runner := newFileRunner(t)
	opts := Options{Formats: []string{FormatHTML}}

	if _, err := runner.Execute(ctx, sampleDocument(), opts); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	doc := sampleDocument()
	doc.Headers[0].Text = "Changed"
	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.CacheInfo.Hits) != 0 {
		t.Error("changed document served from cache")
	}
	if !strings.Contains(string(res.Artifacts[FormatHTML]), "<h1>Changed</h1>") {
		t.Errorf("html = %s", res.Artifacts[FormatHTML])
	}
}

func TestExecuteErrors(t *testing.T) {
	dup := sampleDocument()
	dup.Headers[0].Sections[0].Entries = append(dup.Headers[0].Sections[0].Entries, &rulebook.Rule{ID: "R1"})

	unresolved := sampleDocument()
	unresolved.Headers[0].Sections[0].Entries[1].(*rulebook.Rule).Text = rulebook.Text{rulebook.Ref("R9")}

	tests := []struct {
		name string
		doc  *rulebook.Document
		opts Options
		code errors.Code
	}{
		{"duplicate id", dup, Options{Formats: []string{FormatHTML}}, errors.ErrCodeDuplicateIdentifier},
		{"unresolved reference", unresolved, Options{Formats: []string{FormatHTML}}, errors.ErrCodeUnresolvedReference},
		{"missing template", sampleDocument(), Options{
			Formats:  []string{FormatHTML, FormatLaTeX},
			Template: manuscript.FileTemplate(filepath.Join(t.TempDir(), "missing.tex")),
		}, errors.ErrCodeTemplateLoad},
		{"invalid format", sampleDocument(), Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.doc, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %v", err, tt.code)
			}
			if res != nil {
				t.Error("result returned with error")
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu      sync.Mutex
	refs    int
	renders []string
	hits    []string
	sets    []string
}

func (h *recordingHooks) OnRefsBuilt(_ context.Context, entries int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refs = entries
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, format)
}

func (h *recordingHooks) OnCacheHit(_ context.Context, format string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits = append(h.hits, format)
}

func (h *recordingHooks) OnCacheSet(_ context.Context, format string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets = append(h.sets, format)
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	runner := newFileRunner(t)
	opts := Options{Formats: []string{FormatHTML, FormatDOT}}

	for i := 0; i < 2; i++ {
		if _, err := runner.Execute(ctx, sampleDocument(), opts); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	if hooks.refs != 4 {
		t.Errorf("OnRefsBuilt entries = %d, want 4", hooks.refs)
	}
	if want := []string{"html", "dot"}; !reflect.DeepEqual(hooks.renders, want) {
		t.Errorf("renders = %v, want %v", hooks.renders, want)
	}
	if want := []string{"html", "dot"}; !reflect.DeepEqual(hooks.sets, want) {
		t.Errorf("sets = %v, want %v", hooks.sets, want)
	}
	if want := []string{"html", "dot"}; !reflect.DeepEqual(hooks.hits, want) {
		t.Errorf("hits = %v, want %v", hooks.hits, want)
	}
}

func TestDocumentHash(t *testing.T) {
	a, err := DocumentHash(sampleDocument())
	if err != nil {
		t.Fatalf("DocumentHash: %v", err)
	}
	b, _ := DocumentHash(sampleDocument())
	if a != b {
		t.Error("DocumentHash should be deterministic")
	}
	doc := sampleDocument()
	doc.Headers[0].Sections[0].Entries[0].(*rulebook.Rule).Section = false
	if c, _ := DocumentHash(doc); c == a {
		t.Error("DocumentHash ignores the section flag")
	}
}

func TestConcurrentExecute(t *testing.T) {
	runner := newFileRunner(t)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := runner.Execute(context.Background(), sampleDocument(), Options{Formats: []string{FormatHTML}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Execute: %v", err)
		}
	}
}
