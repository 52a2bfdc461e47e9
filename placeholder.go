package svgimage

// placeholderSize is the intrinsic canvas size of the placeholder icon.
// The placeholder ignores the key's pixel dimensions and tint.
const placeholderSize = 100

// placeholderSVG is rendered whenever the cache-backed retrieval path
// completes without content. A broken or missing source produces a
// visible placeholder, never a failed load.
const placeholderSVG = `<svg width="100" height="100" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg">
  <circle cx="50" cy="50" r="44" fill="none" stroke="#9e9e9e" stroke-width="6"/>
  <circle cx="50" cy="31" r="7" fill="#9e9e9e"/>
  <rect x="43" y="44" width="14" height="30" rx="3" fill="#9e9e9e"/>
</svg>
`
