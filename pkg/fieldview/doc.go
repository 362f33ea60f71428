// Package fieldview provides a survey-data pipeline that fetches form
// submissions from an API, flattens them into tabular rows, and shapes the
// result into summaries, chart series, map points, and spreadsheet exports.
//
// Quick start:
//
//	fv, err := fieldview.New(
//	    fieldview.WithToken(os.Getenv("KOBO_TOKEN")),
//	    fieldview.WithAsset("aXb12CdEfGh"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ds, _ := fv.Load(ctx, fieldview.Query{
//	    Start: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
//	    End:   time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC),
//	})
//	fmt.Println(ds.Summary().Count, ds.Summary().Total)
//	_ = ds.ExportXLSX("submissions.xlsx")
//
// The Client is safe for concurrent use; each Load fetches, flattens, and
// filters a fresh snapshot (memoized per source when caching is on).
package fieldview
