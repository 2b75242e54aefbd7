package parser

import "testing"

// TestInferIDWorkedExample checks spec §4.1's worked CRC32 inference
// example: rpc_answer_dropped's canonical text hashes to 0xA43AD8B7.
func TestInferIDWorkedExample(t *testing.T) {
	got := InferID("rpc_answer_dropped msg_id:long seq_no:int bytes:int = RpcDropAnswer")
	if got != 0xa43ad8b7 {
		t.Fatalf("InferID = %#x, want 0xa43ad8b7", got)
	}
}

// TestInferIDBytesFieldDoesNotSwallowNextToken guards against a
// canonicalisation bug where substituting a bytes-typed field for
// "string" consumed the separator before the next field, corrupting the
// hash for any definition with more than one bytes argument.
func TestInferIDBytesFieldDoesNotSwallowNextToken(t *testing.T) {
	got := InferID("example#1 a:bytes b:int = Example")
	want := InferID("example#1 a:string b:int = Example")
	if got != want {
		t.Fatalf("InferID(a:bytes b:int) = %#x, want %#x (same as a:string b:int)", got, want)
	}
}

// TestInferIDBytesAtOptionalPosition exercises the "?bytes" flag-field
// spelling as well.
func TestInferIDBytesAtOptionalPosition(t *testing.T) {
	got := InferID("example#1 flags:# a:flags.0?bytes = Example")
	want := InferID("example#1 flags:# a:flags.0?string = Example")
	if got != want {
		t.Fatalf("InferID(?bytes) = %#x, want %#x (same as ?string)", got, want)
	}
}
