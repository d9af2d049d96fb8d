package scopemem

import "context"

// Close destroys the packet, file and global allocators in that order.
// Destroy callbacks registered on them run before their memory is
// released. Calling Close again returns nil.
//
// Close fails with ErrNestedScopeActive if the packet scope is still
// entered; the scopes stay usable in that case.
func (s *Scopes) Close() error {
	if s == nil || s.closed {
		return nil
	}
	if s.packet.InScope() {
		err := scopeErr(ScopePacket, "close", ErrNestedScopeActive)
		s.logger.LogClose(context.Background(), err)
		return err
	}

	s.packet.Destroy()
	s.file.Destroy()
	s.global.Destroy()
	s.closed = true

	s.logger.LogClose(context.Background(), nil)
	return nil
}
