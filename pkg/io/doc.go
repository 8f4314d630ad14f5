// Package io reads and writes photonlayout's JSON formats.
//
// # Design documents
//
// A design document describes cells, their geometry, ports and instances,
// plus the waveguides to route between ports. It is the script the CLI and
// the HTTP API replay into a session:
//
//	{
//	  "name": "splitter_tree",
//	  "top": "top",
//	  "cells": [
//	    {
//	      "name": "mmi",
//	      "polygons": [{"layer": "core", "rect": [0, -2, 10, 2]}],
//	      "ports": [
//	        {"name": "in",  "at": [0, 0],  "facing": "w", "width": 0.5, "layer": "core"},
//	        {"name": "out", "at": [10, 0], "facing": "e", "width": 0.5, "layer": "core"}
//	      ]
//	    },
//	    {
//	      "name": "top",
//	      "instances": [
//	        {"name": "a", "cell": "mmi"},
//	        {"name": "b", "cell": "mmi", "at": [100, 40]}
//	      ]
//	    }
//	  ],
//	  "routes": [{"scope": "top", "from": "a.out", "to": "b.in"}]
//	}
//
// Polygons are given as "points", a "rect" [x0, y0, x1, y1] or an
// "ellipse". Layers are names from the session's layer table or literal
// "number/datatype" pairs. Port facings are compass directions ("e", "n",
// "w", "s" and the diagonals) or angles in degrees; instance rotations are
// in degrees. Port paths name instances from the route scope down,
// separated by dots, followed by the port name.
//
// Cells may be listed in any order. Instances are created after every cell
// exists, so a document that would make a cell contain itself fails with
// CYCLIC_REFERENCE.
//
// # Layout export
//
// [WriteLayout] writes a flattened layout: polygons per layer in the
// global frame, in design units, together with the unit and precision an
// exchange-format writer needs. It is the hand-off to external GDS tooling.
package io
