package script

// TemplateSource is the src/main.rs of a freshly initialized template package.
const TemplateSource = `#!/usr/bin/env run-cargo-script
//! This is a regular crate doc comment, but it also contains a partial
//! Cargo manifest.  Note the use of a *fenced* code block, and the
//! ` + "`cargo`" + ` "language".
//!
//! ` + "```cargo" + `
//! ` + Placeholder + `
//! ` + "```" + `

fn main() {
    todo!();
}
`
