package graphgo

// Close releases resources held by this Graph.
//
// Only mmap-backed graphs hold releasable resources; Close on a heap-backed
// graph is a no-op. After Close, a mmap-backed graph's arrays alias unmapped
// memory and must not be touched.
func (g *Graph) Close() error {
	if g == nil || g.mmapCloser == nil {
		return nil
	}
	err := g.mmapCloser.Close()
	g.mmapCloser = nil
	return err
}
