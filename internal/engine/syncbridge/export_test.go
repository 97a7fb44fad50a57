package syncbridge

// SetExit swaps the process exit used by the default fatal handler.
func SetExit(fn func(int)) (restore func()) {
	prev := osExit
	osExit = fn
	return func() { osExit = prev }
}

// RewriteDelivery installs a hook between the worker and the caller's slot.
// rewrite receives the outgoing message id and returns the id to deliver and
// whether to post the message at all; the caller is woken either way.
func RewriteDelivery[A, R any](b *Bridge[A, R], rewrite func(id uint64) (uint64, bool)) {
	next := b.deliver
	b.deliver = func(s *slot[R], msg message[R]) {
		id, post := rewrite(msg.id)
		if !post {
			s.wake(false)
			return
		}
		msg.id = id
		next(s, msg)
	}
}
