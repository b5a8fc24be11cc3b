package scoring

// DefaultChunkSize bounds one warehouse extract batch.
const DefaultChunkSize = 10000

// Chunks splits ids into consecutive batches of at most size elements,
// preserving order. The last batch may be shorter. Chunks of the input share
// its backing array.
func Chunks(ids []int64, size int) [][]int64 {
	if size <= 0 || len(ids) == 0 {
		return nil
	}

	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for pos := 0; pos < len(ids); pos += size {
		end := pos + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[pos:end])
	}
	return chunks
}
