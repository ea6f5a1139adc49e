package export

import (
	"encoding/json"
	"fmt"
	"os"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/ventilios/tenantscan/internal/flatten"
)

// writeParquet writes one table as a snappy-compressed Parquet file. Every
// column is an OPTIONAL UTF8 byte array: the source document is
// loosely typed and the CSV rendition is the canonical one, so Parquet
// mirrors its stringly view rather than inventing a stricter schema.
func writeParquet(path string, t *flatten.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pfw := writerfile.NewWriterFile(f)
	pw, err := writer.NewJSONWriter(parquetSchema(t.Fields), pfw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range t.Records {
		row := make(map[string]any, len(t.Fields))
		for _, field := range t.Fields {
			if rec[field] == nil {
				row[field] = nil
				continue
			}
			row[field] = formatValue(rec[field])
		}

		data, err := json.Marshal(row)
		if err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("marshal parquet row: %w", err)
		}
		if err := pw.Write(string(data)); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet: %w", err)
	}
	return f.Close()
}

func parquetSchema(fields []string) string {
	defs := make([]map[string]string, 0, len(fields))
	for _, field := range fields {
		defs = append(defs, map[string]string{
			"Tag": fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", field),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": defs,
	}
	b, _ := json.Marshal(out)
	return string(b)
}
