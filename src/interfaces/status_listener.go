package interfaces

// -----------------------------------------------------------------------------
// IStatusListener is told whenever the sync controller's acquisition mode changes.
// -----------------------------------------------------------------------------

type IStatusListener interface {

	// OnModeChange reports whether the channel is live and whether the last
	// pull succeeded.
	OnModeChange(live bool, pullHealthy bool)
}
