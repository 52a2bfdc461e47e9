// Package svgimage lets raster image pipelines display SVG vector
// graphics. It builds a canonical, comparable key from a logical request
// plus the ambient display configuration, resolves the SVG bytes from a
// custom fetcher, a cache-backed network download, a bundled asset or a
// local file, and rasterizes them at the key's exact pixel dimensions
// with an optional uniform tint.
//
// The actual SVG rendering and the download cache are injected
// collaborators (Rasterizer, fetch.Store); the softraster and vipsraster
// packages provide rendering backends, the fetch package a disk-backed
// download store.
package svgimage
