package server

import "golang.org/x/sync/errgroup"

// broadcastPlayers sends build(p) to every player in parallel and
// waits for all sends to land before returning, so no recipient can
// observe records out of order relative to another's prompt.
func broadcastPlayers(players []*Player, build func(*Player) any) {
	var g errgroup.Group
	for _, p := range players {
		p := p
		g.Go(func() error {
			p.Session.Send(build(p))
			return nil
		})
	}
	_ = g.Wait()
}

// broadcastSessions sends build() to every session in parallel.
func broadcastSessions(sessions []*Session, build func() any) {
	var g errgroup.Group
	for _, s := range sessions {
		s := s
		g.Go(func() error {
			s.Send(build())
			return nil
		})
	}
	_ = g.Wait()
}
