package export

import (
	"time"

	fittrack "github.com/lucasjlepore/fit-tracker"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type sampleParquetRow struct {
	TSUTCISO  string `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	UnixS     int64  `parquet:"name=unix_s, type=INT64"`
	HeartRate int32  `parquet:"name=heart_rate_bpm, type=INT32"`
	Group     string `parquet:"name=group, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Source    string `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// SampleSet is a batch of samples from one source file.
type SampleSet struct {
	Source  string
	Group   fittrack.FileType
	Samples []fittrack.HeartRateSample
}

// WriteSamplesParquet writes heart-rate samples to a snappy-compressed
// parquet file at path.
func WriteSamplesParquet(path string, sets []SampleSet) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeSamples(fw, sets); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

// MarshalSamplesParquet renders heart-rate samples as parquet bytes.
func MarshalSamplesParquet(sets []SampleSet) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := writeSamples(fw, sets); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeSamples(fw source.ParquetFile, sets []SampleSet) error {
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, set := range sets {
		for _, s := range set.Samples {
			row := sampleParquetRow{
				TSUTCISO:  s.Timestamp.UTC().Format(time.RFC3339),
				UnixS:     s.Timestamp.Unix(),
				HeartRate: int32(s.HeartRate),
				Group:     string(set.Group),
				Source:    set.Source,
			}
			if err := pw.Write(row); err != nil {
				_ = pw.WriteStop()
				return err
			}
		}
	}
	return pw.WriteStop()
}
