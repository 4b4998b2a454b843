/*
Package session holds the shared plotting state: the ordered list of plotted
functions, the view transform they are drawn through, and the cached geometry
sampled for that view.

A Session is the one mutable resource shared by the window, the console and
the exporters. A single mutex guards the entry list, the view and the dirty
flag. Mutations of the view only mark the session dirty; the next call to
Resample re-samples every entry once and clears the flag.

	sess := session.New(session.WithLogger(logger))
	if _, err := sess.Plot(ctx, "sin(x)"); err != nil {
		// report and carry on; the entry list is unchanged
	}
	sess.Resample(ctx)
	sess.Read(func(v view.Transform, entries []session.Entry) {
		// draw
	})
*/
package session
