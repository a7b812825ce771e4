// Package embedder generates vector embeddings for chunk content and search
// queries.
//
// The Embedder interface abstracts over providers: OpenAI's embeddings API,
// a local Ollama instance, or a disabled "none" provider. Selection is
// environment-driven via NewFromEnv (REPOCTX_EMBEDDING_PROVIDER, falling
// back to OPENAI_API_KEY then OLLAMA_HOST detection).
//
// # Unavailability
//
// Embeddings are strictly optional to the rest of the engine. Ordinary
// unavailability — no provider configured, endpoint unreachable, failure
// after retries — is reported as ErrUnavailable, never as a panic:
//
//	emb, err := e.GenerateEmbedding(ctx, req)
//	if errors.Is(err, embedder.ErrUnavailable) {
//	    // index with a nil embedding / fall back to text search
//	}
//
// Only request misuse (empty text, oversized batch) returns other errors.
//
// # Caching and Retry
//
// Successful embeddings are cached in an LRU keyed by the SHA-256 of the
// input text. Remote calls use exponential backoff with a bounded number of
// retries and respect context cancellation.
package embedder
