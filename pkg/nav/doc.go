// Package nav holds the direction vocabulary shared by the key and swipe
// input paths, the per-page navigation targets, and the Router that turns a
// direction signal into a page navigation.
//
// # Remapping
//
// Swipe-originated horizontal directions are remapped before lookup:
//
//	swiped-left  → down
//	swiped-right → up
//
// Vertical swipes are still dispatched to the page but never route, since
// they conflict with scrolling. Keyboard directions are looked up unchanged.
//
// # Usage
//
//	targets := nav.NewTargets(map[nav.Direction]string{
//	    nav.Up:   "/slides/1",
//	    nav.Down: "/slides/3",
//	})
//	r := nav.NewRouter(targets, session)
//	dec, err := r.Navigate(ctx, nav.Left, nav.SourceSwipe) // goes to /slides/3
package nav
