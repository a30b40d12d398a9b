package raknet

import "sort"

// Record is a compressed ACK/NACK entry: either a single sequence number
// (Min == Max) or an inclusive range.
type Record struct {
	Min uint32
	Max uint32
}

// Single reports whether the record covers exactly one sequence number.
func (r Record) Single() bool {
	return r.Min == r.Max
}

// CompressRecords sorts, deduplicates, and run-length-compresses a set of
// sequence numbers into records. Consecutive runs become ranges;
// everything else becomes a singleton record.
func CompressRecords(seqs []uint32) []Record {
	if len(seqs) == 0 {
		return nil
	}
	sorted := append([]uint32(nil), seqs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	records := make([]Record, 0, len(sorted))
	start, prev := sorted[0], sorted[0]
	for _, v := range sorted[1:] {
		if v == prev {
			continue // dedup
		}
		if v == prev+1 {
			prev = v
			continue
		}
		records = append(records, Record{Min: start, Max: prev})
		start, prev = v, v
	}
	records = append(records, Record{Min: start, Max: prev})
	return records
}

// ExpandRecords reverses CompressRecords, emitting every sequence number
// named by the record list in ascending order.
func ExpandRecords(records []Record) []uint32 {
	var out []uint32
	for _, rec := range records {
		for seq := rec.Min; seq <= rec.Max; seq++ {
			out = append(out, seq)
			if seq == rec.Max {
				break // guards against Max == ^uint32(0) wraparound
			}
		}
	}
	return out
}

// EncodeACK renders an ACK record list as the 0xC0 datagram body.
func EncodeACK(records []Record) []byte {
	return encodeRecordDatagram(ACKHeaderByte, records)
}

// EncodeNACK renders a NACK record list as the 0xA0 datagram body.
func EncodeNACK(records []Record) []byte {
	return encodeRecordDatagram(NACKHeaderByte, records)
}

func encodeRecordDatagram(header byte, records []Record) []byte {
	w := NewWriter(3 + len(records)*7)
	w.Byte(header)
	w.Uint16(uint16(len(records)))
	for _, rec := range records {
		if rec.Single() {
			w.Byte(1)
			w.Uint24LE(rec.Min)
		} else {
			w.Byte(0)
			w.Uint24LE(rec.Min)
			w.Uint24LE(rec.Max)
		}
	}
	return w.Bytes()
}

// DecodeRecords parses an ACK or NACK datagram body (header byte already
// consumed by the caller) into its record list.
func DecodeRecords(r *Reader) ([]Record, error) {
	count, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, count)
	for i := uint16(0); i < count; i++ {
		single, err := r.Bool()
		if err != nil {
			return nil, err
		}
		min, err := r.Uint24LE()
		if err != nil {
			return nil, err
		}
		if single {
			records = append(records, Record{Min: min, Max: min})
			continue
		}
		max, err := r.Uint24LE()
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Min: min, Max: max})
	}
	return records, nil
}
