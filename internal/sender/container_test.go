package sender

import "testing"

func TestBatchForContainerRespectsItemLimit(t *testing.T) {
	msgs := make([]queuedMessage, maxContainerItems+5)
	for i := range msgs {
		msgs[i] = queuedMessage{msgID: int64(i), seqNo: int32(i), body: []byte("x")}
	}
	batches := batchForContainer(msgs)
	if len(batches) != 2 {
		t.Fatalf("want 2 batches, got %d", len(batches))
	}
	if len(batches[0]) != maxContainerItems {
		t.Fatalf("first batch should be exactly %d items, got %d", maxContainerItems, len(batches[0]))
	}
	if len(batches[1]) != 5 {
		t.Fatalf("second batch should be 5 items, got %d", len(batches[1]))
	}
}

func TestBatchForContainerRespectsByteLimit(t *testing.T) {
	big := make([]byte, maxContainerBytes/2)
	msgs := []queuedMessage{
		{msgID: 1, body: big},
		{msgID: 2, body: big},
		{msgID: 3, body: big},
	}
	batches := batchForContainer(msgs)
	if len(batches) < 2 {
		t.Fatalf("expected oversized messages to split across multiple containers, got %d batches", len(batches))
	}
	for _, b := range batches {
		total := 8
		for _, m := range b {
			total += 16 + len(m.body)
		}
		if total > maxContainerBytes {
			t.Fatalf("batch exceeds maxContainerBytes: %d", total)
		}
	}
}

func TestPackContainerSingleMessageUnwrapped(t *testing.T) {
	body := []byte("solo message body")
	out := packContainer([]queuedMessage{{msgID: 1, seqNo: 1, body: body}})
	if string(out) != string(body) {
		t.Fatal("a single queued message should be sent unwrapped, not as a container")
	}
}

func TestPackContainerMultipleMessages(t *testing.T) {
	msgs := []queuedMessage{
		{msgID: 1, seqNo: 1, body: []byte("a")},
		{msgID: 2, seqNo: 3, body: []byte("bb")},
	}
	out := packContainer(msgs)
	if len(out) == 0 {
		t.Fatal("expected non-empty container body")
	}
	// packContainer prefixes the msg_container constructor id, then the
	// item count: at least 8 bytes of header.
	if len(out) < 8 {
		t.Fatal("container body shorter than its own header")
	}
}
