// Package storytext turns rectangular selections on PDF pages into ordered
// paragraphs of text by running an external extraction script, and tags
// edition text with keywords through a second script.
//
// # Basic Usage
//
//	p, err := storytext.New(storytext.Config{
//	    ScriptDir:   "/opt/storytext/scripts",
//	    Interpreter: "python3",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	selections, err := storytext.NewSelectionMap([]storytext.Selection{
//	    {X: 40, Y: 60, Width: 200, Height: 300, PageNumber: 0, SequenceNumber: 0},
//	    {X: 40, Y: 60, Width: 200, Height: 300, PageNumber: 1, SequenceNumber: 1},
//	})
//	if err != nil {
//	    log.Fatal(err) // invalid input is the only hard error
//	}
//
//	paragraphs := p.Sequence(ctx, storytext.PDFSource{Path: "edition.pdf"}, selections)
//
// # Reading Order
//
// Sequence numbers order regions across pages. Consecutive regions on the
// same page are extracted with one script invocation; a page that appears
// again later in the order gets another invocation. Results are concatenated
// in reading order.
//
// # Failures
//
// Script failures (timeouts, nonzero exits, unparsable output, scripts that
// cannot be started) are logged and contribute no paragraphs. They are
// reported to the [Recorder] given with [WithRecorder].
//
// # Dependency Injection
//
//	p, err := storytext.New(cfg,
//	    storytext.WithLogger(logger),
//	    storytext.WithRunner(fakeRunner),
//	)
package storytext
