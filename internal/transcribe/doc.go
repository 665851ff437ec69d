// Package transcribe turns an extracted audio track into text by driving an
// ordered chain of speech-to-text backends. The remote API goes first when a
// credential is available; the local whisper engine is always the final
// fallback, so remote outages degrade latency and cost, never capability.
package transcribe
