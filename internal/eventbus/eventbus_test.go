package eventbus

import "testing"

func Test_Subscribe_Is_Additive_Not_Replacing(t *testing.T) {
	b := New()

	var firstCalled, secondCalled bool

	b.Subscribe(OpCreateDoc, func(Event) { firstCalled = true })
	b.Subscribe(OpCreateDoc, func(Event) { secondCalled = true })

	b.Publish(NewDocumentEvent(OpCreateDoc, "people", "doc-1"))

	if !firstCalled {
		t.Fatalf("first subscriber not invoked")
	}

	if !secondCalled {
		t.Fatalf("second subscriber not invoked, subscribe replaced earlier subscription")
	}
}

func Test_Publish_Only_Invokes_Matching_Op(t *testing.T) {
	b := New()

	var deleteCalled bool

	b.Subscribe(OpDeleteDoc, func(Event) { deleteCalled = true })
	b.Publish(NewDocumentEvent(OpCreateDoc, "people", "doc-1"))

	if deleteCalled {
		t.Fatalf("delete subscriber invoked for a create event")
	}
}

func Test_Publish_With_No_Subscribers_Is_Noop(t *testing.T) {
	b := New()

	b.Publish(NewCollectionEvent(OpCreateCollection, "people"))
}

func Test_Publish_Passes_Collection_And_Document_Events_Distinctly(t *testing.T) {
	b := New()

	var gotDocID string

	b.Subscribe(OpUpdateDoc, func(e Event) {
		if de, ok := e.(DocumentEvent); ok {
			gotDocID = de.DocumentID()
		}
	})

	b.Publish(NewDocumentEvent(OpUpdateDoc, "people", "doc-42"))

	if gotDocID != "doc-42" {
		t.Fatalf("gotDocID=%q", gotDocID)
	}
}
