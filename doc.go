/*
Package dylib is a process-wide registry of native shared libraries and a symbol resolver across them.

# Underwater

 1. Every library opened through a [Registry] stays open for the rest of the process, unless a caller closes it explicitly.
 2. Opening a library twice keeps one registry entry, the extra native reference is released.
 3. The whole process (main program plus libraries loaded with global visibility) is one pseudo library, opened with the empty path.
 4. Native calls go through a [Loader], [SystemLoader] uses [purego] on unix and x/sys/windows on windows.

# Lookup

[Registry.Resolve] checks, in order:

 1. symbols registered with [Registry.AddSymbol], they always win.
 2. the opened libraries and the process scope, as the [SearchOrdering] decides.
 3. the [SpecialResolver], called outside the registry lock.

[DefaultOrdering] asks the process scope first and then the libraries, most recently loaded first,
which recovers symbols of libraries opened with local visibility.

# Notes

 1. One lock serializes the registry, native open/close/symbol calls included. A stuck native loader stalls every caller.
 2. Not found is a zero [Sym], never an error.
 3. [ErrAlreadyLoaded] is advisory, the handle in question is still usable.
 4. Use [Bind] or [Use] to call a resolved native function from Go.

# Process-wide registry

[Default] returns the shared [Registry], the package level functions [AddSymbol], [LoadPermanentLibrary],
[ResolveSymbol] and friends operate on it. Tests and embedders needing isolation create their own with [New].

# Command line

	go install github.com/ZenLiuCN/dylib/cmd/dylib@latest
	dylib --process --preload libm.so.6 resolve cos sin

[purego]: https://github.com/ebitengine/purego
*/
package dylib
