// WatchWhat - Personal Media Recommendation Engine
// Copyright 2026 cocodzh
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cocodzh/watchwhat

// Package series derives a stable series identity from an item title.
//
// History sources list serialized works as individual volumes, seasons, or
// regional title variants ("One Piece Vol.1", "海贼王 第1卷", "ワンピース 1").
// Recommending volume 2 of a series the user already reads is noise, as is
// recommending the same series twice under different titles. The candidate
// builder therefore collapses items to one representative per series key.
//
// Identity derivation: NFKC-normalize the title, fold traditional Chinese to
// simplified, strip volume/season/part suffixes, compact away punctuation and
// whitespace, then consult a small alias table for cross-language series
// names. The resulting key is prefixed with the media kind so a film
// adaptation never collides with its source book.
package series
