// Provides platform-appropriate paths for the tool.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The tool name "bromeforge" is used as the
// subdirectory under each base path.
package paths
