// Package managed provides objects whose lifecycle belongs to a
// transactional Context.
//
// A Context runs its work on one goroutine. Perform schedules work there and
// PerformAndWait runs it there and waits, inline when the caller is already
// on the context. Entities embed Object, which makes them observable and lets
// observers find the owning context:
//
//	type Note struct {
//		managed.Object
//		Title kvo.Property[string]
//	}
//
//	ctx := managed.NewContext("notes")
//	n := &Note{}
//	n.Title.Bind(&n.Subject, "title", "")
//	_ = ctx.Insert(n)
//
// Entities may implement AwakeFromInsert and WillTurnIntoFault to start and
// stop their own observations. Both hooks run on the context goroutine.
package managed
