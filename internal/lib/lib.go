// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains the markup sanitizer (xss) used on the bookmark read path.
package lib
