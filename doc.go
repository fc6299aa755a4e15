// Package docqa provides a Go client for retrieval-augmented question
// answering over a documentation corpus stored in Supabase pgvector.
//
// A question runs through four stages: the OpenAI embeddings API vectorizes
// it, the Supabase match RPC retrieves the closest documentation chunks, the
// chunks are assembled into a grounding context, and a chat model generates
// the final answer. Every stage degrades instead of failing, so Ask always
// returns a result.
//
//	client, err := docqa.New(
//	    docqa.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    docqa.WithSupabase(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_SERVICE_KEY")),
//	    docqa.WithSource("ultravox_docs"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res := client.Ask(ctx, "How do I start an outbound call?")
//	fmt.Println(res.Text)
//
// Answer returns only the text for callers that do not need the structured
// outcome:
//
//	answer := client.Answer(ctx, "How do I start an outbound call?")
package docqa
