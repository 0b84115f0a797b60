// Command textgrid is the CLI tool for working with Praat TextGrid
// annotation documents. It converts between the long text, short text and
// binary serializations, imports ELAN .eaf documents, validates and inspects
// files, evaluates label queries, and maintains a SQLite corpus index.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ulikunitz/xz"

	"github.com/spokenlab/textgrid/core/codec"
	"github.com/spokenlab/textgrid/core/corpus"
	"github.com/spokenlab/textgrid/core/eaf"
	"github.com/spokenlab/textgrid/core/model"
	"github.com/spokenlab/textgrid/core/search"
	"github.com/spokenlab/textgrid/core/sqlite"
	"github.com/spokenlab/textgrid/core/validate"
)

const version = "0.2.0"

var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// CLI defines the command-line interface for textgrid.
var CLI struct {
	Convert  ConvertCmd  `cmd:"" help:"Convert a document to another serialization"`
	Inspect  InspectCmd  `cmd:"" help:"Summarize a document's tiers and entries"`
	Validate ValidateCmd `cmd:"" help:"Check a document's structural invariants"`
	Query    QueryCmd    `cmd:"" help:"Evaluate a label query against a document"`
	Index    IndexGroup  `cmd:"" help:"Corpus index operations"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// IndexGroup contains corpus index operations.
type IndexGroup struct {
	Add    IndexAddCmd    `cmd:"" help:"Add documents to the corpus index"`
	Search IndexSearchCmd `cmd:"" help:"Search labels across the corpus"`
	List   IndexListCmd   `cmd:"" help:"List indexed documents"`
	Remove IndexRemoveCmd `cmd:"" help:"Remove a document from the index"`
}

// readDocument loads a document from path, transparently decompressing xz
// streams and importing ELAN .eaf files.
func readDocument(path string) (*model.TextGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, xzMagic) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		if data, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
	}
	name := strings.TrimSuffix(path, ".xz")
	if strings.EqualFold(filepath.Ext(name), ".eaf") {
		return eaf.Import(bytes.NewReader(data))
	}
	g, _, err := codec.DecodeDetect(data)
	return g, err
}

// writeDocument encodes g to path, xz-compressing when requested.
func writeDocument(path string, g *model.TextGrid, format codec.Format, compress bool) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, g, format); err != nil {
		return err
	}
	data := buf.Bytes()
	if compress {
		var packed bytes.Buffer
		w, err := xz.NewWriter(&packed)
		if err != nil {
			return fmt.Errorf("xz: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("xz: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("xz: %w", err)
		}
		data = packed.Bytes()
	}
	return os.WriteFile(path, data, 0644)
}

// ConvertCmd converts a document between serializations.
type ConvertCmd struct {
	Input    string `arg:"" help:"Input document (.TextGrid or .eaf, optionally .xz)" type:"existingfile"`
	Output   string `arg:"" help:"Output path"`
	Format   string `name:"format" short:"f" default:"long" help:"Output format: long, short or binary"`
	Compress bool   `name:"compress" short:"z" help:"xz-compress the output"`
}

func (c *ConvertCmd) Run() error {
	format, err := codec.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	g, err := readDocument(c.Input)
	if err != nil {
		return err
	}
	if err := writeDocument(c.Output, g, format, c.Compress); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s%s)\n", c.Output, format, compressSuffix(c.Compress))
	return nil
}

func compressSuffix(compressed bool) string {
	if compressed {
		return ", xz"
	}
	return ""
}

// InspectCmd summarizes a document.
type InspectCmd struct {
	Input string `arg:"" help:"Input document" type:"existingfile"`
}

func (c *InspectCmd) Run() error {
	g, err := readDocument(c.Input)
	if err != nil {
		return err
	}
	fp, err := codec.Fingerprint(g)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", c.Input)
	fmt.Printf("  range:       [%g, %g]\n", g.Xmin, g.Xmax)
	fmt.Printf("  tiers:       %d\n", g.Len())
	fmt.Printf("  fingerprint: %s\n", fp)
	for _, t := range g.Tiers {
		fmt.Printf("  - %-20q %-12s [%g, %g] %d entries\n",
			t.Name, t.Type.Class(), t.Xmin, t.Xmax, t.Len())
	}
	return nil
}

// ValidateCmd checks a document's structural invariants.
type ValidateCmd struct {
	Input string `arg:"" help:"Input document" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	g, err := readDocument(c.Input)
	if err != nil {
		return err
	}
	if err := validate.Document(g); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d tiers)\n", c.Input, g.Len())
	return nil
}

// QueryCmd evaluates a label query against one document.
type QueryCmd struct {
	Input string `arg:"" help:"Input document" type:"existingfile"`
	Query string `arg:"" help:"Query, e.g.: tier = \"words\" and text contains \"he\""`
}

func (c *QueryCmd) Run() error {
	g, err := readDocument(c.Input)
	if err != nil {
		return err
	}
	res, err := search.Run(g, c.Query)
	if err != nil {
		return err
	}
	for _, m := range res.Intervals {
		for _, iv := range m.Intervals {
			fmt.Printf("%s\t[%g, %g]\t%q\n", m.Tier.Name, iv.Xmin, iv.Xmax, iv.Text)
		}
	}
	for _, m := range res.Points {
		for _, p := range m.Points {
			fmt.Printf("%s\t%g\t%q\n", m.Tier.Name, p.Time, p.Mark)
		}
	}
	fmt.Fprintf(os.Stderr, "%d matches\n", res.Len())
	return nil
}

// IndexAddCmd adds documents to the corpus index.
type IndexAddCmd struct {
	DB     string   `name:"db" default:"corpus.db" help:"Index database path"`
	Inputs []string `arg:"" help:"Documents to index" type:"existingfile"`
}

func (c *IndexAddCmd) Run() error {
	ix, err := corpus.Open(c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	for _, path := range c.Inputs {
		g, err := readDocument(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		id, err := ix.Add(path, g)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("indexed %s (%s)\n", path, id)
	}
	return nil
}

// IndexSearchCmd searches labels across the corpus.
type IndexSearchCmd struct {
	DB   string `name:"db" default:"corpus.db" help:"Index database path"`
	Text string `arg:"" help:"Label substring to search for"`
}

func (c *IndexSearchCmd) Run() error {
	ix, err := corpus.Open(c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	hits, err := ix.SearchLabels(c.Text)
	if err != nil {
		return err
	}
	for _, h := range hits {
		if h.Xmax != nil {
			fmt.Printf("%s\t%s\t[%g, %g]\t%q\n", h.Path, h.Tier, h.Xmin, *h.Xmax, h.Text)
		} else {
			fmt.Printf("%s\t%s\t%g\t%q\n", h.Path, h.Tier, h.Xmin, h.Text)
		}
	}
	fmt.Fprintf(os.Stderr, "%d matches\n", len(hits))
	return nil
}

// IndexListCmd lists indexed documents.
type IndexListCmd struct {
	DB string `name:"db" default:"corpus.db" help:"Index database path"`
}

func (c *IndexListCmd) Run() error {
	ix, err := corpus.Open(c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()

	docs, err := ix.Documents()
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Printf("%s\t[%g, %g]\t%s\t%s\n", d.Path, d.Xmin, d.Xmax,
			d.Fingerprint[:12], d.IndexedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// IndexRemoveCmd removes a document from the index.
type IndexRemoveCmd struct {
	DB   string `name:"db" default:"corpus.db" help:"Index database path"`
	Path string `arg:"" help:"Indexed document path"`
}

func (c *IndexRemoveCmd) Run() error {
	ix, err := corpus.Open(c.DB)
	if err != nil {
		return err
	}
	defer ix.Close()
	return ix.Remove(c.Path)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("textgrid version %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("textgrid"),
		kong.Description("Praat TextGrid annotation toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
