// Package engine owns the process-wide rendering subsystem.
//
// Acquire creates the single live Session; every scene file parsed through
// it drives the scene-description API state machine (options block, world
// block, graphics state, object instances). Depending on the options the
// session reprints directives (cat), converts triangle meshes to PLY files
// (toply) or hands the resolved scene to a render.Renderer at WorldEnd.
// Release tears the session down and may be deferred right after Acquire.
package engine
