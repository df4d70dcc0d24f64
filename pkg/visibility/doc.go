/*
Package visibility resolves the effective visibility of layers.

A layer is effectively visible when its own visibility and that of every
enclosing group are true. Own visibility is the session override when one is
present and the authored flag otherwise.

Two equivalent algorithms are provided. Effective scans the flat layer
sequence backward from the layer and needs no precomputed state. Resolver
walks the parent index built by layertree.Tree and runs in O(depth).
*/
package visibility
