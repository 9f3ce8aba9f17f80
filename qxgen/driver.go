package qxgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/skycoder42/qxmlcodegen/internal/gen"
	"github.com/skycoder42/qxmlcodegen/qxsd"
)

// VerifyMode selects how the optional W3C meta-schema pre-pass behaves,
// mirroring spec.md §6's three CLI forms.
type VerifyMode int

const (
	// VerifyWarn runs the pre-pass and logs a failure without stopping
	// generation — the default.
	VerifyWarn VerifyMode = iota
	// VerifySkip never runs the pre-pass at all (--skip-verify).
	VerifySkip
	// VerifyStrict runs the pre-pass and fails generation if it fails
	// (--verify).
	VerifyStrict
)

// Options configures one Generate call; every field has a usable zero
// value (VerifyWarn, http.DefaultClient, DefaultMetaSchemaURL).
type Options struct {
	Verify        VerifyMode
	MetaSchemaURL string
	HTTPClient    *http.Client
	Logf          func(format string, args ...interface{})
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Generate is component H: read xsdPath, optionally verify it against the
// W3C meta-schema, build the IR, and write the declaration/reader pair to
// hdrPath/srcPath. It is the single entry point cmd/qxmlcodegen wires up.
func Generate(xsdPath, hdrPath, srcPath string, opts Options) error {
	raw, err := os.ReadFile(xsdPath)
	if err != nil {
		return &qxsd.Error{Kind: qxsd.ErrIO, Msg: err.Error()}
	}

	doc, err := transcodeToUTF8(raw)
	if err != nil {
		return &qxsd.Error{Kind: qxsd.ErrIO, Msg: fmt.Sprintf("decoding %s: %v", xsdPath, err)}
	}

	if opts.Verify != VerifySkip {
		if err := runMetaVerify(doc, opts); err != nil {
			if opts.Verify == VerifyStrict {
				return err
			}
			opts.logf("meta-schema verification failed (continuing): %v", err)
		}
	}

	schema, err := qxsd.Build(doc, xsdPath)
	if err != nil {
		return err
	}
	opts.logf("built schema %q: %d record(s), %d basic type(s)", schema.Config.ClassName, len(schema.Records), len(schema.BasicTypes))

	declFile, err := EmitDecl(schema)
	if err != nil {
		return fmt.Errorf("qxgen: emitting declarations: %w", err)
	}
	readerFile, err := EmitReader(schema)
	if err != nil {
		return fmt.Errorf("qxgen: emitting readers: %w", err)
	}

	declSrc, err := gen.FormattedSource(declFile)
	if err != nil {
		return fmt.Errorf("qxgen: formatting %s: %w", hdrPath, err)
	}
	readerSrc, err := gen.FormattedSource(readerFile)
	if err != nil {
		return fmt.Errorf("qxgen: formatting %s: %w", srcPath, err)
	}

	if err := os.WriteFile(hdrPath, declSrc, 0o644); err != nil {
		return &qxsd.Error{Kind: qxsd.ErrIO, Msg: err.Error()}
	}
	if err := os.WriteFile(srcPath, readerSrc, 0o644); err != nil {
		return &qxsd.Error{Kind: qxsd.ErrIO, Msg: err.Error()}
	}
	opts.logf("wrote %s and %s", hdrPath, srcPath)
	return nil
}

// transcodeToUTF8 decodes raw to UTF-8 using charset.NewReader's
// detection: a byte-order mark, else an HTML-style sniff of the raw
// bytes (UTF-8 if they are valid UTF-8). The document's own
// <?xml encoding="..."?> declaration is not consulted.
func transcodeToUTF8(raw []byte) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), "")
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func runMetaVerify(doc []byte, opts Options) error {
	v := qxsd.NewMetaVerifier(opts.MetaSchemaURL, opts.HTTPClient)
	return v.Verify(context.Background(), doc)
}
