package export

import (
	"bufio"
	"io"

	"github.com/bytedance/sonic"
	fittrack "github.com/lucasjlepore/fit-tracker"
	"github.com/lucasjlepore/fit-tracker/fitmsg"
)

// WriteMessagesJSONL writes one JSON object per message in file order.
func WriteMessagesJSONL(w io.Writer, msgs []fitmsg.Message) error {
	bw := bufio.NewWriter(w)
	for _, m := range msgs {
		data, err := sonic.Marshal(m)
		if err != nil {
			return err
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSamplesJSON writes samples as an indented JSON array.
func WriteSamplesJSON(w io.Writer, samples []fittrack.HeartRateSample) error {
	if samples == nil {
		samples = []fittrack.HeartRateSample{}
	}
	return writeIndented(w, samples)
}

// WriteJSON writes any value as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	return writeIndented(w, v)
}

func writeIndented(w io.Writer, v any) error {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
